package billing

import (
	"errors"
	"fmt"

	"github.com/existflow/ironmeet/internal/model"
)

// Plan is one pricing tier. Its level is its position in the catalog.
type Plan struct {
	Key          string  `yaml:"key" json:"key"`
	Name         string  `yaml:"name" json:"name"`
	MonthlyPrice float64 `yaml:"monthly_price" json:"monthly_price"`
	PriceID      string  `yaml:"price_id" json:"price_id,omitempty"`
}

// DefaultPlans is used when the config defines none
var DefaultPlans = []Plan{
	{Key: "free", Name: "Free", MonthlyPrice: 0},
	{Key: "pro", Name: "Pro", MonthlyPrice: 12, PriceID: "price_pro"},
	{Key: "team", Name: "Team", MonthlyPrice: 49, PriceID: "price_team"},
}

// Statuses the provider reports for a subscription that grants access
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
)

// Catalog resolves price ids to plans
type Catalog struct {
	plans []Plan
}

// NewCatalog validates and indexes plans. The first plan is the free tier.
func NewCatalog(plans []Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, errors.New("billing: at least one plan is required")
	}
	seen := make(map[string]bool, len(plans))
	for _, p := range plans {
		if p.Key == "" {
			return nil, errors.New("billing: plan key is required")
		}
		if seen[p.Key] {
			return nil, fmt.Errorf("billing: duplicate plan key %q", p.Key)
		}
		seen[p.Key] = true
	}
	return &Catalog{plans: append([]Plan(nil), plans...)}, nil
}

// Plans returns the tiers in level order
func (c *Catalog) Plans() []Plan {
	return append([]Plan(nil), c.plans...)
}

// FreeKey returns the key of the level 0 plan
func (c *Catalog) FreeKey() string {
	return c.plans[0].Key
}

// PlanKey maps a provider price id to a plan key. Unknown and empty ids map
// to the free plan.
func (c *Catalog) PlanKey(priceID string) string {
	if priceID == "" {
		return c.FreeKey()
	}
	for _, p := range c.plans {
		if p.PriceID == priceID {
			return p.Key
		}
	}
	return c.FreeKey()
}

// Level returns the level of a plan key, 0 when unknown
func (c *Catalog) Level(key string) int {
	for i, p := range c.plans {
		if p.Key == key {
			return i
		}
	}
	return 0
}

// HasAtLeast reports whether key is at or above minLevel
func (c *Catalog) HasAtLeast(key string, minLevel int) bool {
	return c.Level(key) >= minLevel
}

// IsPaid reports whether the subscription is live and on a plan above free
func (c *Catalog) IsPaid(sub model.Subscription) bool {
	if sub.Status != StatusActive && sub.Status != StatusTrialing {
		return false
	}
	return c.Level(c.PlanKey(sub.PlanID)) > 0
}

// Summary is what the API reports about a user's billing state
type Summary struct {
	Status string `json:"status"`
	Plan   string `json:"plan"`
	Level  int    `json:"level"`
	Paid   bool   `json:"paid"`
}

// Summarize resolves a subscription against the catalog
func (c *Catalog) Summarize(sub model.Subscription) Summary {
	key := c.PlanKey(sub.PlanID)
	return Summary{
		Status: sub.Status,
		Plan:   key,
		Level:  c.Level(key),
		Paid:   c.IsPaid(sub),
	}
}
