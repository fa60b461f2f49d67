package scrape

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// FetchOutcome is the result of one page retrieval. Exactly one of
// Err or HTML/FinalURL is meaningful; FinalURL differs from the
// requested URL when www-stripping recovery occurred.
type FetchOutcome struct {
	HTML     string
	FinalURL string
	Err      *FetchError
}

// OK reports whether the page body was obtained.
func (o FetchOutcome) OK() bool { return o.Err == nil }

// PageFetcher retrieves page HTML. Implemented by Fetcher; stubbed in
// orchestrator tests.
type PageFetcher interface {
	FetchResilient(ctx context.Context, pageURL string) FetchOutcome
}

// Fetcher is the only network primitive the pipeline uses. It never
// returns a Go error; every failure surfaces as a classified
// FetchOutcome.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	robots  *robotsGuard
	logger  *zap.Logger
}

func NewFetcher(timeout time.Duration, ratePerSecond float64, respectRobots bool, logger *zap.Logger) *Fetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}
	f := &Fetcher{
		client:  &http.Client{Transport: transport},
		timeout: timeout,
		logger:  logger,
	}
	if ratePerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	if respectRobots {
		f.robots = newRobotsGuard(f.client)
	}
	return f
}

// FetchPage issues a single GET with a browser identity, following
// redirects, bounded by the configured timeout. Any text body counts
// as content regardless of status code; status handling is the page's
// business, not the fetcher's.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) FetchOutcome {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return FetchOutcome{Err: &FetchError{URL: pageURL, Kind: KindTimeout, Err: err}}
		}
	}
	if f.robots != nil && !f.robots.allowed(ctx, pageURL) {
		return FetchOutcome{Err: &FetchError{URL: pageURL, Kind: KindRobotsDenied, Err: errRobotsDisallowed}}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return FetchOutcome{Err: &FetchError{URL: pageURL, Kind: KindOther, Err: err}}
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchOutcome{Err: &FetchError{URL: pageURL, Kind: classifyTransportError(err), Err: err}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchOutcome{Err: &FetchError{URL: pageURL, Kind: classifyTransportError(err), Err: err}}
	}
	return FetchOutcome{HTML: string(body), FinalURL: pageURL}
}

// FetchResilient calls FetchPage and, when a "www." URL fails with a
// recoverable transport error, retries the bare-domain form exactly
// once. The second outcome is final either way.
func (f *Fetcher) FetchResilient(ctx context.Context, pageURL string) FetchOutcome {
	out := f.FetchPage(ctx, pageURL)
	if out.OK() {
		return out
	}
	if !strings.Contains(pageURL, "www.") || !out.Err.Kind.Recoverable() {
		return out
	}
	bare := StripWWW(pageURL)
	if bare == pageURL {
		return out
	}
	f.logger.Info("retrying fetch without www",
		zap.String("url", pageURL),
		zap.String("kind", out.Err.Kind.String()))
	return f.FetchPage(ctx, bare)
}

var errRobotsDisallowed = errors.New("disallowed by robots.txt")

// robotsGuard fetches and caches robots.txt per host, failing open on
// any error.
type robotsGuard struct {
	client *http.Client
	mu     sync.Mutex
	cache  map[string]*robotstxt.RobotsData
}

func newRobotsGuard(client *http.Client) *robotsGuard {
	return &robotsGuard{client: client, cache: make(map[string]*robotstxt.RobotsData)}
}

func (g *robotsGuard) allowed(ctx context.Context, pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return true
	}
	rules := g.rulesFor(ctx, u)
	if rules == nil {
		return true
	}
	grp := rules.FindGroup(browserUserAgent)
	if grp == nil {
		grp = rules.FindGroup("*")
	}
	if grp == nil {
		return true
	}
	return grp.Test(u.Path)
}

func (g *robotsGuard) rulesFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host
	g.mu.Lock()
	if rules, ok := g.cache[key]; ok {
		g.mu.Unlock()
		return rules
	}
	g.mu.Unlock()

	robotsURL := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", browserUserAgent)

	var rules *robotstxt.RobotsData
	resp, err := g.client.Do(req)
	if err == nil {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
		resp.Body.Close()
		if readErr == nil && resp.StatusCode < 400 {
			if parsed, parseErr := robotstxt.FromBytes(body); parseErr == nil {
				rules = parsed
			}
		}
	}

	g.mu.Lock()
	g.cache[key] = rules
	g.mu.Unlock()
	return rules
}
