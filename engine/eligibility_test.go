package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/swipewise/cashback-engine/engine"
)

func TestEligible_Gates(t *testing.T) {
	base := purchase("蝦皮購物", 1000)
	base.Region = "國內"
	base.Category = "網購"

	tests := []struct {
		name string
		rule engine.Rule
		ctx  func(engine.Context) engine.Context
		want bool
	}{
		{
			name: "no constraints always passes",
			rule: openRule("open", 0.01),
			ctx:  func(c engine.Context) engine.Context { return c },
			want: true,
		},
		{
			name: "region allow-list passes on member",
			rule: engine.Rule{ID: "r", RegionAllow: []string{"國內", "國外"}},
			ctx:  func(c engine.Context) engine.Context { return c },
			want: true,
		},
		{
			name: "region allow-list rejects non-member",
			rule: engine.Rule{ID: "r", RegionAllow: []string{"國外"}},
			ctx:  func(c engine.Context) engine.Context { return c },
			want: false,
		},
		{
			name: "linepay gate rejects without linepay",
			rule: engine.Rule{ID: "r", RequireLinePay: true},
			ctx:  func(c engine.Context) engine.Context { return c },
			want: false,
		},
		{
			name: "linepay gate passes with linepay",
			rule: engine.Rule{ID: "r", RequireLinePay: true},
			ctx: func(c engine.Context) engine.Context {
				c.LinePay = true
				return c
			},
			want: true,
		},
		{
			name: "category allow-list rejects non-member",
			rule: engine.Rule{ID: "r", CategoryAllow: []string{"超商"}},
			ctx:  func(c engine.Context) engine.Context { return c },
			want: false,
		},
		{
			name: "category allow-list passes on member",
			rule: engine.Rule{ID: "r", CategoryAllow: []string{"網購", "超商"}},
			ctx:  func(c engine.Context) engine.Context { return c },
			want: true,
		},
		{
			name: "keyword allow-list passes when any keyword matches",
			rule: engine.Rule{ID: "r", KeywordAllow: []string{"momo", "蝦皮"}},
			ctx:  func(c engine.Context) engine.Context { return c },
			want: true,
		},
		{
			name: "keyword allow-list normalizes case",
			rule: engine.Rule{ID: "r", KeywordAllow: []string{"SHOPEE"}},
			ctx: func(c engine.Context) engine.Context {
				c.Merchant = "shopee tw 訂單"
				return c
			},
			want: true,
		},
		{
			name: "keyword allow-list rejects when nothing matches",
			rule: engine.Rule{ID: "r", KeywordAllow: []string{"momo"}},
			ctx:  func(c engine.Context) engine.Context { return c },
			want: false,
		},
		{
			// An empty string is a substring of every merchant name.
			name: "empty keyword entry matches any merchant",
			rule: engine.Rule{ID: "r", KeywordAllow: []string{"momo", ""}},
			ctx: func(c engine.Context) engine.Context {
				c.Merchant = "誠品書店"
				return c
			},
			want: true,
		},
		{
			name: "all gates must pass together",
			rule: engine.Rule{
				ID:             "r",
				RegionAllow:    []string{"國內"},
				CategoryAllow:  []string{"網購"},
				KeywordAllow:   []string{"蝦皮"},
				RequireLinePay: true,
			},
			ctx:  func(c engine.Context) engine.Context { return c }, // linepay off
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Eligible(tt.rule, tt.ctx(base))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEligible_EmptyListsMeanNoRestriction(t *testing.T) {
	rule := engine.Rule{
		ID:            "r",
		RegionAllow:   []string{},
		CategoryAllow: []string{},
		KeywordAllow:  []string{},
	}
	assert.True(t, engine.Eligible(rule, purchase("anything", 100)))
}
