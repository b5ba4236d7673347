package sponsor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"axees/internal/model"
)

// ErrInvalidRule is returned for rules that cannot be evaluated safely.
var ErrInvalidRule = errors.New("invalid sponsorship rule")

type rulesFile struct {
	Rules []model.SponsorshipRule `yaml:"rules"`
}

// LoadRules reads and validates a YAML rules file.
func LoadRules(path string) ([]model.SponsorshipRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML document of the form `rules: [...]` and
// validates every rule. A rule without priority gets medium.
func ParseRules(data []byte) ([]model.SponsorshipRule, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	seen := make(map[string]bool, len(f.Rules))
	for i := range f.Rules {
		r := &f.Rules[i]
		if r.Priority == "" {
			r.Priority = model.PriorityMedium
		}
		if err := Validate(*r); err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule id %q: %w", r.ID, ErrInvalidRule)
		}
		seen[r.ID] = true
	}
	return f.Rules, nil
}

// Validate checks the bounds of a single rule.
func Validate(r model.SponsorshipRule) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("empty id: %w", ErrInvalidRule)
	}
	if len(r.ProductIDs) == 0 {
		return fmt.Errorf("rule %s: no products: %w", r.ID, ErrInvalidRule)
	}
	switch r.Priority {
	case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
	default:
		return fmt.Errorf("rule %s: priority %q: %w", r.ID, r.Priority, ErrInvalidRule)
	}

	switch r.TriggerType {
	case model.TriggerKeyword:
		for _, kw := range r.Keywords {
			if strings.TrimSpace(kw) != "" {
				return nil
			}
		}
		return fmt.Errorf("rule %s: no keywords: %w", r.ID, ErrInvalidRule)
	case model.TriggerDuration:
		if r.ViewDuration < 0 {
			return fmt.Errorf("rule %s: negative view duration: %w", r.ID, ErrInvalidRule)
		}
	case model.TriggerScroll:
		if r.ScrollDepth < 0 || r.ScrollDepth > 100 {
			return fmt.Errorf("rule %s: scroll depth %v outside 0-100: %w", r.ID, r.ScrollDepth, ErrInvalidRule)
		}
	case model.TriggerMention:
		if r.MentionCount < 1 {
			return fmt.Errorf("rule %s: mention count must be positive: %w", r.ID, ErrInvalidRule)
		}
	case model.TriggerEngagement:
	default:
		return fmt.Errorf("rule %s: trigger type %q: %w", r.ID, r.TriggerType, ErrInvalidRule)
	}
	return nil
}
