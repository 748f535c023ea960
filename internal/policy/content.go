// Package policy screens chat content before it is forwarded.
package policy

import (
	"strings"

	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

// ContentPolicy rejects text that contains any blocklisted term. Matching is
// case-insensitive substring matching.
type ContentPolicy struct {
	terms []string
}

// NewContentPolicy builds a policy from the configured terms. Blank terms are ignored.
func NewContentPolicy(terms []string) *ContentPolicy {
	normalized := make([]string, 0, len(terms))
	for _, term := range terms {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			normalized = append(normalized, term)
		}
	}
	return &ContentPolicy{terms: normalized}
}

// Match returns the first blocklisted term found in text.
func (p *ContentPolicy) Match(text string) (string, bool) {
	if p == nil || text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, term := range p.terms {
		if strings.Contains(lower, term) {
			return term, true
		}
	}
	return "", false
}

// Check returns a CONTENT_REJECTED error when text matches the blocklist.
func (p *ContentPolicy) Check(text string) error {
	if term, ok := p.Match(text); ok {
		return apperrors.NewContentRejected(term)
	}
	return nil
}

// CheckRaw screens an unparsed payload.
func (p *ContentPolicy) CheckRaw(payload []byte) error {
	return p.Check(string(payload))
}
