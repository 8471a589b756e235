package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"discount-audit/internal/config"
	"discount-audit/internal/domain"
)

// Rule pairs an applicability predicate with a discount ceiling.
// A record violates the rule when the predicate holds and its discount is
// strictly greater than the ceiling.
type Rule struct {
	Label       domain.AlertLabel
	Description string
	Ceiling     decimal.Decimal

	applies func(rec domain.TransactionRecord) bool
}

// Violated reports whether rec breaks this rule. Records without a parseable
// discount never violate a rule.
func (r Rule) Violated(rec domain.TransactionRecord) bool {
	if !rec.DiscountPct.Valid {
		return false
	}
	return r.applies(rec) && rec.DiscountPct.Decimal.GreaterThan(r.Ceiling)
}

// RuleSet is the ordered, read-only list of discount rules plus the
// constants the pre-filter stage needs.
type RuleSet struct {
	rules           []Rule
	employeeZones   map[string]bool
	offersWarehouse int
}

// NewRuleSet builds the rules in priority order from cfg. The returned set
// copies everything it needs from cfg.
func NewRuleSet(cfg config.RulesConfig) *RuleSet {
	controlled := toSet(cfg.ControlledCodes)
	brands := toSet(cfg.Brands)

	employeeZone := cfg.EmployeeZone
	physicianZone := cfg.PhysicianZone
	permitted := cfg.PermittedEmployeeWarehouse
	clientA := cfg.IntercompanyA.Code
	clientB := cfg.IntercompanyB.Code

	rules := []Rule{
		{
			Label: domain.AlertIllegalEmployeeDiscount,
			Description: fmt.Sprintf("sales in zone %s outside warehouse %d, or in zone %s",
				employeeZone, permitted, physicianZone),
			Ceiling: decimal.NewFromFloat(cfg.EmployeeCeiling),
			// The warehouse exemption only covers the employee zone.
			applies: func(rec domain.TransactionRecord) bool {
				return (rec.SaleZone == employeeZone && !rec.WarehouseIs(permitted)) ||
					rec.SaleZone == physicianZone
			},
		},
		{
			Label:       domain.AlertControlledExceeded,
			Description: fmt.Sprintf("controlled products (%d codes)", len(controlled)),
			Ceiling:     decimal.NewFromFloat(cfg.ControlledCeiling),
			applies: func(rec domain.TransactionRecord) bool {
				return controlled[rec.ProductCode]
			},
		},
		{
			Label:       domain.AlertIntercompanyAExceeded,
			Description: "intercompany client " + clientA,
			Ceiling:     decimal.NewFromFloat(cfg.IntercompanyA.Ceiling),
			applies: func(rec domain.TransactionRecord) bool {
				return rec.Requester == clientA
			},
		},
		{
			Label:       domain.AlertIntercompanyBExceeded,
			Description: "intercompany client " + clientB,
			Ceiling:     decimal.NewFromFloat(cfg.IntercompanyB.Ceiling),
			applies: func(rec domain.TransactionRecord) bool {
				return rec.Requester == clientB
			},
		},
		{
			Label:       domain.AlertBrandExceeded,
			Description: "brands " + strings.Join(cfg.Brands, ", "),
			Ceiling:     decimal.NewFromFloat(cfg.BrandCeiling),
			applies: func(rec domain.TransactionRecord) bool {
				return brands[rec.Hierarchy]
			},
		},
		{
			Label:       domain.AlertGeneralExceeded,
			Description: "any sale",
			Ceiling:     decimal.NewFromFloat(cfg.GeneralCeiling),
			applies: func(domain.TransactionRecord) bool {
				return true
			},
		},
	}

	return &RuleSet{
		rules:           rules,
		employeeZones:   map[string]bool{employeeZone: true, physicianZone: true},
		offersWarehouse: cfg.OffersWarehouse,
	}
}

// Rules returns the rules in evaluation order.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Classify returns the label of the first rule rec violates, or OK.
func (s *RuleSet) Classify(rec domain.TransactionRecord) domain.AlertLabel {
	for _, rule := range s.rules {
		if rule.Violated(rec) {
			return rule.Label
		}
	}
	return domain.AlertOK
}

// priority returns the position of label in evaluation order; OK sorts last.
func (s *RuleSet) priority(label domain.AlertLabel) int {
	for i, rule := range s.rules {
		if rule.Label == label {
			return i
		}
	}
	return len(s.rules)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = true
	}
	return set
}
