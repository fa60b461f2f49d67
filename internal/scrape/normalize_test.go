package scrape

import (
	"errors"
	"net"
	"testing"
)

func TestStripWWW(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "WWW host",
			input:    "https://www.example.com/contact",
			expected: "https://example.com/contact",
		},
		{
			name:     "Bare host unchanged",
			input:    "https://example.com/",
			expected: "https://example.com/",
		},
		{
			name:     "WWW in path only",
			input:    "https://example.com/www.page",
			expected: "https://example.com/www.page",
		},
		{
			name:     "Unparsable input returned as-is",
			input:    "http://[::1]:namedport",
			expected: "http://[::1]:namedport",
		},
		{
			name:     "No host",
			input:    "not-a-url",
			expected: "not-a-url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripWWW(tt.input); got != tt.expected {
				t.Errorf("StripWWW(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{
			name:     "DNS not found",
			err:      &net.DNSError{Err: "no such host", Name: "www.example.com", IsNotFound: true},
			expected: KindDNSNotFound,
		},
		{
			name:     "DNS timeout",
			err:      &net.DNSError{Err: "i/o timeout", Name: "example.com", IsTimeout: true},
			expected: KindTimeout,
		},
		{
			name:     "Net timeout",
			err:      timeoutErr{},
			expected: KindTimeout,
		},
		{
			name:     "Unknown authority message",
			err:      errors.New("x509: certificate signed by unknown authority"),
			expected: KindTLSHandshake,
		},
		{
			name:     "Altname mismatch message",
			err:      errors.New("Hostname/IP does not match certificate's altnames"),
			expected: KindTLSHandshake,
		},
		{
			name:     "Handshake failure message",
			err:      errors.New("remote error: tls: handshake failure"),
			expected: KindTLSHandshake,
		},
		{
			name:     "OpenSSL message",
			err:      errors.New("OpenSSL error 0A000410"),
			expected: KindTLSHandshake,
		},
		{
			name:     "Connection refused is other",
			err:      errors.New("dial tcp 1.2.3.4:443: connect: connection refused"),
			expected: KindOther,
		},
		{
			name:     "Nil error is other",
			err:      nil,
			expected: KindOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyTransportError(tt.err); got != tt.expected {
				t.Errorf("classifyTransportError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestErrorKindRecoverable(t *testing.T) {
	recoverable := map[ErrorKind]bool{
		KindOther:        false,
		KindTimeout:      false,
		KindDNSNotFound:  true,
		KindTLSHandshake: true,
		KindRobotsDenied: false,
	}
	for kind, want := range recoverable {
		if got := kind.Recoverable(); got != want {
			t.Errorf("%v.Recoverable() = %v, want %v", kind, got, want)
		}
	}
}
