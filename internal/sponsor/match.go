// Package sponsor implements the sponsorship trigger engine: declarative
// rules watched against content, view time and scroll signals, surfacing
// one promoted product at a time.
package sponsor

import (
	"math"
	"strings"
	"time"

	"axees/internal/model"
)

// Signals is the locally observed state rules are evaluated against.
type Signals struct {
	Content string
	Elapsed time.Duration
	// Scroll is a percentage in [0, 100].
	Scroll float64
}

// Match reports whether rule's condition holds for sig.
// Keyword rules match when any keyword is a case-insensitive substring
// of the content. Mention and engagement rules never match on their own.
func Match(rule model.SponsorshipRule, sig Signals) bool {
	switch rule.TriggerType {
	case model.TriggerKeyword:
		return matchesKeyword(sig.Content, rule.Keywords)
	case model.TriggerDuration:
		return sig.Elapsed >= seconds(rule.ViewDuration)
	case model.TriggerScroll:
		return sig.Scroll >= rule.ScrollDepth
	}
	return false
}

func matchesKeyword(content string, keywords []string) bool {
	if content == "" {
		return false
	}
	text := strings.ToLower(content)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func clampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
