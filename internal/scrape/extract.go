package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// ExtractEmails scans raw HTML for email-shaped substrings and returns
// the distinct matches in first-seen order. Matching is pattern-only;
// anything email-shaped in markup, scripts, or comments counts.
func ExtractEmails(htmlContent string) []string {
	set := newOrderedSet()
	set.AddAll(emailPattern.FindAllString(htmlContent, -1))
	return set.Values()
}

// ExtractContactLinks finds anchors whose href or text mentions
// "contact" or "about", resolves them against baseURL, and returns the
// distinct absolute URLs in document order. Links leaving the base
// URL's registrable domain are dropped.
func ExtractContactLinks(htmlContent, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	set := newOrderedSet()
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		probe := strings.ToLower(href)
		text := strings.ToLower(sel.Text())
		if !strings.Contains(probe, "contact") && !strings.Contains(probe, "about") &&
			!strings.Contains(text, "contact") && !strings.Contains(text, "about") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !sameRegistrableDomain(base, abs) {
			return
		}
		set.Add(abs.String())
	})
	return set.Values()
}

func sameRegistrableDomain(a, b *url.URL) bool {
	da, err := publicsuffix.EffectiveTLDPlusOne(a.Hostname())
	if err != nil {
		da = a.Hostname()
	}
	db, err := publicsuffix.EffectiveTLDPlusOne(b.Hostname())
	if err != nil {
		db = b.Hostname()
	}
	return strings.EqualFold(da, db)
}
