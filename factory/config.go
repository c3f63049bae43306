/*
Package factory provides JSON to Go configuration conversion.

PURPOSE:
  Converts the three JSON data files the app ships with into an
  engine.Config. Rules and keyword tables are plain data - whoever
  maintains the card portfolio edits JSON, no code changes.

JSON SCHEMA (rules.json, one object per rule):
  {
    "rule_id": "cube-overseas",
    "rule_name": "CUBE 3% overseas",
    "card": "CUBE",
    "rate": 0.03,
    "priority": 2,
    "cap_reward": 300,
    "cap_spend": 10000,
    "region_allow": ["國外"],
    "category_allow": ["網購"],
    "keyword_allow": ["agoda"],
    "require_linepay": false
  }

KEYWORD TABLES:
  merchantmap.json: [{"keyword": "uber", "default_region": "國內"}, ...]
  categorymap.json: [{"keyword": "7-11", "category": "超商"}, ...]

NUMERIC LENIENCY:
  Missing or unparseable numeric fields (rate, priority, caps) coerce
  to zero rather than failing the load - the engine is a best-effort
  estimator, not a validator. The one exception: an ABSENT cap stays
  absent (effectively unlimited), it never collapses to a zero cap.

USAGE:
  cfg, err := factory.LoadConfig("./data")
  eng := engine.New(cfg)

SEE ALSO:
  - engine/types.go: Config, Rule, KeywordEntry
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/swipewise/cashback-engine/engine"
)

// Fallback labels when keyword inference finds nothing.
const (
	DefaultRegion   = "國內"
	DefaultCategory = "其他"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleJSON is the JSON representation of a rule. Numeric fields are
// raw so malformed values can coerce to zero instead of failing.
type RuleJSON struct {
	RuleID         string          `json:"rule_id"`
	RuleName       string          `json:"rule_name"`
	Card           string          `json:"card"`
	Rate           json.RawMessage `json:"rate"`
	Priority       json.RawMessage `json:"priority,omitempty"`
	CapReward      json.RawMessage `json:"cap_reward,omitempty"`
	CapSpend       json.RawMessage `json:"cap_spend,omitempty"`
	RegionAllow    []string        `json:"region_allow,omitempty"`
	CategoryAllow  []string        `json:"category_allow,omitempty"`
	KeywordAllow   []string        `json:"keyword_allow,omitempty"`
	RequireLinePay bool            `json:"require_linepay,omitempty"`
}

// MerchantMapJSON is one merchant-to-region entry.
type MerchantMapJSON struct {
	Keyword       string `json:"keyword"`
	DefaultRegion string `json:"default_region"`
}

// CategoryMapJSON is one merchant-to-category entry.
type CategoryMapJSON struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// =============================================================================
// NUMERIC COERCION
// =============================================================================

// numberOrZero applies the uniform numeric-or-zero policy: accepts a
// JSON number or a numeric string, anything else becomes zero.
func numberOrZero(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err == nil {
		return d
	}
	return decimal.Zero
}

// capOrNil preserves the absent-vs-zero distinction for caps: absent
// stays nil (unlimited), present-but-malformed coerces to zero.
func capOrNil(raw json.RawMessage) *decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	d := numberOrZero(raw)
	return &d
}

// =============================================================================
// CONVERSION
// =============================================================================

// RuleFromJSON converts one JSON rule into an engine.Rule.
func RuleFromJSON(rj RuleJSON) engine.Rule {
	return engine.Rule{
		ID:             engine.RuleID(rj.RuleID),
		Name:           rj.RuleName,
		Card:           rj.Card,
		Rate:           numberOrZero(rj.Rate),
		Priority:       numberOrZero(rj.Priority),
		CapReward:      capOrNil(rj.CapReward),
		CapSpend:       capOrNil(rj.CapSpend),
		RegionAllow:    rj.RegionAllow,
		CategoryAllow:  rj.CategoryAllow,
		KeywordAllow:   rj.KeywordAllow,
		RequireLinePay: rj.RequireLinePay,
	}
}

// ParseRules parses rules.json content.
func ParseRules(data []byte) ([]engine.Rule, error) {
	var rjs []RuleJSON
	if err := json.Unmarshal(data, &rjs); err != nil {
		return nil, fmt.Errorf("failed to parse rules JSON: %w", err)
	}
	rules := make([]engine.Rule, len(rjs))
	for i, rj := range rjs {
		rules[i] = RuleFromJSON(rj)
	}
	return rules, nil
}

// ParseMerchantMap parses merchantmap.json content.
func ParseMerchantMap(data []byte) ([]engine.KeywordEntry, error) {
	var items []MerchantMapJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse merchant map JSON: %w", err)
	}
	entries := make([]engine.KeywordEntry, len(items))
	for i, it := range items {
		entries[i] = engine.KeywordEntry{Keyword: it.Keyword, Value: it.DefaultRegion}
	}
	return entries, nil
}

// ParseCategoryMap parses categorymap.json content.
func ParseCategoryMap(data []byte) ([]engine.KeywordEntry, error) {
	var items []CategoryMapJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse category map JSON: %w", err)
	}
	entries := make([]engine.KeywordEntry, len(items))
	for i, it := range items {
		entries[i] = engine.KeywordEntry{Keyword: it.Keyword, Value: it.Category}
	}
	return entries, nil
}

// =============================================================================
// LOADER
// =============================================================================

// LoadConfig reads rules.json, merchantmap.json and categorymap.json
// from dir and assembles the immutable engine configuration.
func LoadConfig(dir string) (engine.Config, error) {
	rules, err := loadFile(dir, "rules.json", ParseRules)
	if err != nil {
		return engine.Config{}, err
	}
	merchants, err := loadFile(dir, "merchantmap.json", ParseMerchantMap)
	if err != nil {
		return engine.Config{}, err
	}
	categories, err := loadFile(dir, "categorymap.json", ParseCategoryMap)
	if err != nil {
		return engine.Config{}, err
	}

	return engine.Config{
		Rules:              rules,
		MerchantRegions:    merchants,
		MerchantCategories: categories,
		DefaultRegion:      DefaultRegion,
		DefaultCategory:    DefaultCategory,
	}, nil
}

func loadFile[T any](dir, name string, parse func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return zero, fmt.Errorf("failed to read %s: %w", name, err)
	}
	out, err := parse(data)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
