package domain

import "github.com/shopspring/decimal"

// LabelCount is the number of alerts raised with a given label.
type LabelCount struct {
	Label AlertLabel `json:"label"`
	Count int        `json:"count"`
}

// FilterSummary describes what the pre-filter stage removed.
// A row rejected by both enabled switches is counted under each of them.
type FilterSummary struct {
	Options                   FilterOptions `json:"options"`
	RowsRead                  int           `json:"rows_read"`
	ExcludedByEmployeeZone    int           `json:"excluded_by_employee_zone"`
	ExcludedByOffersWarehouse int           `json:"excluded_by_offers_warehouse"`
	RowsKept                  int           `json:"rows_kept"`
}

// Summary provides the compliance KPIs of one audit run.
type Summary struct {
	TransactionsAudited  int             `json:"transactions_audited"`
	TransactionsDeviated int             `json:"transactions_deviated"`
	CompliancePct        float64         `json:"compliance_pct"`
	DeviatedNetValue     decimal.Decimal `json:"deviated_net_value"`

	// MissingDiscountRows counts records labeled OK only because their discount
	// could not be parsed.
	MissingDiscountRows int `json:"missing_discount_rows"`
}

// AuditResult is the output of the rule evaluator.
type AuditResult struct {
	Records []AnnotatedRecord
	Alerts  []AnnotatedRecord
	Filter  FilterSummary
}

// AuditReport is the top-level structure for the final JSON output.
type AuditReport struct {
	RunID        string            `json:"run_id"`
	Source       string            `json:"source"`
	Filter       FilterSummary     `json:"filter"`
	Summary      Summary           `json:"summary"`
	Distribution []LabelCount      `json:"alert_distribution"`
	Alerts       []AnnotatedRecord `json:"alerts"`

	// Records holds the full annotated set; it is exported as CSV, not JSON.
	Records []AnnotatedRecord `json:"-"`
}
