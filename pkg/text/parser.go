// Package text provides text normalization and catalog-link classification
// for inbound chat messages.
package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// Ellipsis is appended to truncated button labels
	Ellipsis = "..."
)

var (
	urlRegex        = regexp.MustCompile(`https?://\S+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Parser normalizes inbound message text and classifies catalog links.
type Parser struct {
	linkHost string
}

// NewParser creates a parser that recognizes links on the given catalog host.
func NewParser(linkHost string) *Parser {
	return &Parser{linkHost: linkHost}
}

// Normalize trims, NFKC-normalizes and collapses whitespace in message text.
func (p *Parser) Normalize(text string) string {
	text = strings.TrimSpace(text)
	text = norm.NFKC.String(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return text
}

// ContainsCatalogLink reports whether the text mentions the catalog host.
func (p *Parser) ContainsCatalogLink(text string) bool {
	return p.linkHost != "" && strings.Contains(text, p.linkHost)
}

// FirstURL returns the first http(s) URL in the text, or the whole text when
// none is present (users often paste bare links without a scheme).
func (p *Parser) FirstURL(text string) string {
	if match := urlRegex.FindString(text); match != "" {
		return match
	}
	return strings.TrimSpace(text)
}

// TruncateLabel shortens a button label to at most maxLen characters,
// replacing the tail with an ellipsis marker. Truncation is rune-safe.
func TruncateLabel(label string, maxLen int) string {
	runes := []rune(label)
	if len(runes) <= maxLen {
		return label
	}
	if maxLen <= len(Ellipsis) {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-len(Ellipsis)]) + Ellipsis
}
