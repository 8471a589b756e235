package domain

import "github.com/shopspring/decimal"

// AlertLabel is the outcome of rule evaluation for a single record.
type AlertLabel string

const (
	AlertIllegalEmployeeDiscount AlertLabel = "illegal-employee-discount"
	AlertControlledExceeded      AlertLabel = "controlled-exceeded"
	AlertIntercompanyAExceeded   AlertLabel = "intercompany-a-exceeded"
	AlertIntercompanyBExceeded   AlertLabel = "intercompany-b-exceeded"
	AlertBrandExceeded           AlertLabel = "brand-exceeded"
	AlertGeneralExceeded         AlertLabel = "general-exceeded"
	AlertOK                      AlertLabel = "OK"
)

// Table is a raw tabular report as read from disk: one header row followed by data rows.
type Table struct {
	Source string
	Header []string
	Rows   [][]string

	// HeaderLine is the 1-based line of the header in the source file.
	HeaderLine int
	// Lines holds the 1-based source line of each entry in Rows. It may be
	// nil, in which case rows are assumed to follow the header without gaps.
	Lines []int
}

// Line returns the source line of Rows[i].
func (t *Table) Line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return t.HeaderLine + i + 1
}

// TransactionRecord represents one line of the sales report.
type TransactionRecord struct {
	Row          int    `json:"row"`
	InvoiceDate  string `json:"invoice_date"`
	Warehouse    *int   `json:"warehouse"` // nil when the source value is not an integer
	SaleType     string `json:"sale_type"`
	SaleZone     string `json:"sale_zone"`
	Requester    string `json:"requester"`
	CustomerName string `json:"customer_name"`
	ProductCode  string `json:"product_code"`
	Material     string `json:"material"`
	Hierarchy    string `json:"hierarchy"`
	Quantity     string `json:"quantity,omitempty"`

	// Invalid when the source value could not be parsed.
	DiscountPct decimal.NullDecimal `json:"discount_pct"`
	NetValue    decimal.NullDecimal `json:"net_value"`
}

// WarehouseIs reports whether the record's warehouse is known and equal to code.
func (r TransactionRecord) WarehouseIs(code int) bool {
	return r.Warehouse != nil && *r.Warehouse == code
}

// AnnotatedRecord is a transaction record together with its audit outcome.
type AnnotatedRecord struct {
	TransactionRecord
	Alert AlertLabel `json:"alert"`
}

// FilterOptions selects which rows are dropped before evaluation.
type FilterOptions struct {
	ExcludeEmployeeZones   bool `json:"exclude_employee_zones"`
	ExcludeOffersWarehouse bool `json:"exclude_offers_warehouse"`
}

// DefaultFilterOptions mirrors the dashboard defaults: both exclusions enabled.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{ExcludeEmployeeZones: true, ExcludeOffersWarehouse: true}
}
