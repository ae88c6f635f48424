package main

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// The authenticated page inlines the upload endpoint inside script text as
// a single-quoted string. The 20-hex segment is the page's own repo
// placeholder; the captured group is the upload session id.
var uploadLinkRe = regexp.MustCompile(
	`'/ajax/u/d/[0-9a-f]{20}/upload/\?r=` +
		`([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})'`)

// extractFormToken reads the anti-forgery token from the share password
// form: the first input of form#share-passwd-form carries it as its value.
func extractFormToken(doc *goquery.Document) (string, error) {
	form := doc.Find("form#share-passwd-form")
	if form.Length() == 0 {
		return "", errFormNotFound
	}
	input := form.Find("input").First()
	if input.Length() == 0 {
		return "", errInputNotFound
	}
	val, ok := input.Attr("value")
	if !ok {
		return "", errTokenMissing
	}
	return val, nil
}

// extractSessionID scans inline scripts in document order and returns the
// first upload session id found. The service renders the upload link only
// after a correct password, so no match means the credentials were wrong
// (or the share token is), not that the page failed to load.
func extractSessionID(doc *goquery.Document) (string, error) {
	var id string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := uploadLinkRe.FindStringSubmatch(s.Text()); m != nil {
			id = m[1]
			return false
		}
		return true
	})
	if id == "" {
		return "", errInvalidCredentials
	}
	return id, nil
}
