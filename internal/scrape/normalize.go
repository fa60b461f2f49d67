package scrape

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrorKind is the closed classification of fetch failures. It is
// produced once, at the transport boundary, so downstream decisions
// switch on a tagged variant instead of re-parsing error text.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindTimeout
	KindDNSNotFound
	KindTLSHandshake
	KindRobotsDenied
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindDNSNotFound:
		return "dns_not_found"
	case KindTLSHandshake:
		return "tls_handshake"
	case KindRobotsDenied:
		return "robots_denied"
	default:
		return "other"
	}
}

// Recoverable reports whether the failure warrants the one-shot retry
// against the bare-domain form of a "www." URL.
func (k ErrorKind) Recoverable() bool {
	return k == KindDNSNotFound || k == KindTLSHandshake
}

// FetchError wraps a transport error with its classification.
type FetchError struct {
	URL  string
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StripWWW removes a leading "www." label from the URL's host. The
// input is returned unchanged when it does not parse or has no such
// label; callers treat that as "nothing to retry".
func StripWWW(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	if !strings.HasPrefix(u.Host, "www.") {
		return rawURL
	}
	u.Host = strings.TrimPrefix(u.Host, "www.")
	return u.String()
}

// Message fragments that identify TLS/certificate failures when the
// error type alone is not conclusive (proxies and older stacks wrap
// them as plain errors).
var tlsIndicators = []string{
	"ssl",
	"handshake",
	"openssl",
	"certificate",
	"altname",
	"hostname/ip does not match",
}

func classifyTransportError(err error) ErrorKind {
	if err == nil {
		return KindOther
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return KindDNSNotFound
		}
		if dnsErr.IsTimeout {
			return KindTimeout
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var (
		recordErr   tls.RecordHeaderError
		hostErr     x509.HostnameError
		authErr     x509.UnknownAuthorityError
		invalidErr  x509.CertificateInvalidError
		verifyAlert *tls.CertificateVerificationError
	)
	if errors.As(err, &recordErr) || errors.As(err, &hostErr) ||
		errors.As(err, &authErr) || errors.As(err, &invalidErr) ||
		errors.As(err, &verifyAlert) {
		return KindTLSHandshake
	}

	msg := strings.ToLower(err.Error())
	for _, ind := range tlsIndicators {
		if strings.Contains(msg, ind) {
			return KindTLSHandshake
		}
	}
	return KindOther
}
