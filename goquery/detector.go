// Package goquery inspects HTML pages with github.com/PuerkitoBio/goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitepush"
)

// Ensure Detector implements sitepush.VerificationDetector at compile time.
var _ sitepush.VerificationDetector = (*Detector)(nil)

// Detector finds search console verification tokens in HTML pages.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// HasVerification reports whether html carries a google-site-verification
// meta tag whose content is token. A trailing ".html" on token, as used by
// the file method, is ignored.
func (d *Detector) HasVerification(html, token string) bool {
	token = strings.TrimSuffix(strings.TrimSpace(token), ".html")
	if token == "" {
		return false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	found := false
	doc.Find("meta[name='google-site-verification']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if content, exists := s.Attr("content"); exists && strings.TrimSpace(content) == token {
			found = true
		}
		return !found
	})
	return found
}
