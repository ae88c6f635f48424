package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return doc
}

func TestExtractFormToken(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<form id="share-passwd-form" method="post">
			<input type="hidden" name="csrfmiddlewaretoken" value="tok123">
			<input type="password" name="password">
		</form>
	</body></html>`)
	got, err := extractFormToken(doc)
	if err != nil {
		t.Fatalf("extractFormToken: %v", err)
	}
	if got != "tok123" {
		t.Fatalf("expected token tok123, got %q", got)
	}
}

func TestExtractFormTokenNoForm(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<form id="login-form"><input value="x"></form>
	</body></html>`)
	if _, err := extractFormToken(doc); !errors.Is(err, errFormNotFound) {
		t.Fatalf("expected errFormNotFound, got %v", err)
	}
}

func TestExtractFormTokenNoInput(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<form id="share-passwd-form"><button>Submit</button></form>
	</body></html>`)
	if _, err := extractFormToken(doc); !errors.Is(err, errInputNotFound) {
		t.Fatalf("expected errInputNotFound, got %v", err)
	}
}

func TestExtractFormTokenNoValue(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<form id="share-passwd-form"><input type="password" name="password"></form>
	</body></html>`)
	if _, err := extractFormToken(doc); !errors.Is(err, errTokenMissing) {
		t.Fatalf("expected errTokenMissing, got %v", err)
	}
}

func scriptPage(uuids ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><script>var app = {};</script></head><body>")
	for _, u := range uuids {
		fmt.Fprintf(&b,
			"<script>var link = '/ajax/u/d/0123456789abcdef0123/upload/?r=%s';</script>", u)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestExtractSessionID(t *testing.T) {
	const want = "12345678-1234-1234-1234-123456789012"
	got, err := extractSessionID(mustDoc(t, scriptPage(want)))
	if err != nil {
		t.Fatalf("extractSessionID: %v", err)
	}
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractSessionIDSkipsNonMatchingScripts(t *testing.T) {
	// First script has no upload link at all; the second carries it.
	page := `<html><body>
		<script>var noise = "nothing to see";</script>
		<script>var link = '/ajax/u/d/aaaaaaaaaaaaaaaaaaaa/upload/?r=0af7dead-beef-4000-8000-0123456789ab';</script>
	</body></html>`
	got, err := extractSessionID(mustDoc(t, page))
	if err != nil {
		t.Fatalf("extractSessionID: %v", err)
	}
	if got != "0af7dead-beef-4000-8000-0123456789ab" {
		t.Fatalf("unexpected session id %q", got)
	}
}

func TestExtractSessionIDFirstMatchWins(t *testing.T) {
	first := "11111111-1111-1111-1111-111111111111"
	second := "22222222-2222-2222-2222-222222222222"
	got, err := extractSessionID(mustDoc(t, scriptPage(first, second)))
	if err != nil {
		t.Fatalf("extractSessionID: %v", err)
	}
	if got != first {
		t.Fatalf("expected first match %q, got %q", first, got)
	}
}

func TestExtractSessionIDNoMatch(t *testing.T) {
	doc := mustDoc(t, `<html><body><script>var x = 1;</script></body></html>`)
	if _, err := extractSessionID(doc); !errors.Is(err, errInvalidCredentials) {
		t.Fatalf("expected errInvalidCredentials, got %v", err)
	}
}

func TestExtractSessionIDRejectsMalformedUUIDs(t *testing.T) {
	bad := []string{
		"123456789-1234-1234-1234-123456789012", // first group too long
		"1234567-1234-1234-1234-123456789012",   // first group too short
		"12345678-123-1234-1234-123456789012",   // second group too short
		"12345678-12345-1234-1234-123456789012", // second group too long
		"12345678-1234-1234-1234-1234567890123", // last group too long
		"12345678-1234-1234-1234-12345678901",   // last group too short
		"12345678-1234-1234-1234-12345678901g",  // non-hex digit
		"ABCDEF12-1234-1234-1234-123456789012",  // uppercase hex
	}
	for _, u := range bad {
		if _, err := extractSessionID(mustDoc(t, scriptPage(u))); !errors.Is(err, errInvalidCredentials) {
			t.Fatalf("uuid %q: expected errInvalidCredentials, got %v", u, err)
		}
	}
}
