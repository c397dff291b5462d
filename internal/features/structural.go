package features

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractHTMLFeatures computes features 6-10 from page markup. The HTML5
// parser underneath recovers from malformed or truncated markup, so partial
// pages still produce best-effort counts.
func ExtractHTMLFeatures(html string) (Structural, error) {
	var f Structural

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return f, fmt.Errorf("parse html: %w", err)
	}

	f[0] = float64(doc.Find("form").Length())
	f[1] = float64(countPasswordInputs(doc))
	f[2] = float64(doc.Find("iframe").Length())
	f[3] = float64(countExternalLinks(doc, baseHref(doc)))
	f[4] = boolToFloat(hasExternalScript(doc))

	return f, nil
}

// countPasswordInputs matches the type attribute exactly as written:
// type="Password" is not counted.
func countPasswordInputs(doc *goquery.Document) int {
	n := 0
	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		if t, ok := s.Attr("type"); ok && t == "password" {
			n++
		}
	})
	return n
}

// baseHref returns the href of the first <base href>, or "".
func baseHref(doc *goquery.Document) string {
	href, _ := doc.Find("base[href]").First().Attr("href")
	return href
}

// countExternalLinks counts anchors whose href starts with "http" and does
// not start with base. With no base every http(s) href is external.
func countExternalLinks(doc *goquery.Document, base string) int {
	n := 0
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return
		}
		if base != "" && strings.HasPrefix(href, base) {
			return
		}
		n++
	})
	return n
}

func hasExternalScript(doc *goquery.Document) bool {
	found := false
	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if strings.HasPrefix(src, "http") {
			found = true
			return false
		}
		return true
	})
	return found
}
