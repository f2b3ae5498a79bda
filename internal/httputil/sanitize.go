package httputil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// unsafeFilenameChars matches characters stripped from suggested filenames.
var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._ -]`)

// ValidateURL checks that a URL is well-formed and uses HTTP or HTTPS.
// Plain HTTP is allowed because many stream hosts still serve manifests
// without TLS; everything else (file://, javascript:, ...) is rejected.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("only HTTP(S) URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// SanitizeFilename strips characters that are unsafe in filenames
// and collapses whitespace.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		name = "output"
	}
	return name
}
