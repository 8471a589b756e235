package usecase

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"discount-audit/internal/domain"
)

// NormalizeHeader trims every header and renames known aliases to their
// canonical column name. Unknown headers are kept, trimmed.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if canonical, ok := domain.ColumnAliases[h]; ok {
			h = canonical
		}
		out[i] = h
	}
	return out
}

// columnIndex maps a canonical column name to its position in a row.
type columnIndex map[string]int

// indexColumns resolves the canonical columns of a normalized header and fails
// with a MissingColumnError on the first required column that is absent.
func indexColumns(normalized []string, log *zap.Logger) (columnIndex, error) {
	idx := make(columnIndex, len(normalized))
	for i, name := range normalized {
		if name == "" {
			continue
		}
		if first, dup := idx[name]; dup {
			log.Warn("duplicate column after normalization, keeping first",
				zap.String("column", name), zap.Int("kept", first), zap.Int("ignored", i))
			continue
		}
		idx[name] = i
	}

	for _, required := range domain.RequiredColumns {
		if _, ok := idx[required]; !ok {
			return nil, &domain.MissingColumnError{Column: required}
		}
	}
	return idx, nil
}

func (idx columnIndex) cell(row []string, column string) string {
	i, ok := idx[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// toRecord converts one raw row. Numeric fields that cannot be parsed are left invalid.
func (idx columnIndex) toRecord(row []string, line int) domain.TransactionRecord {
	return domain.TransactionRecord{
		Row:          line,
		InvoiceDate:  idx.cell(row, domain.ColumnInvoiceDate),
		Warehouse:    parseWarehouse(idx.cell(row, domain.ColumnWarehouse)),
		SaleType:     idx.cell(row, domain.ColumnSaleType),
		SaleZone:     idx.cell(row, domain.ColumnSaleZone),
		Requester:    idx.cell(row, domain.ColumnRequester),
		CustomerName: idx.cell(row, domain.ColumnCustomerName),
		ProductCode:  idx.cell(row, domain.ColumnProductCode),
		Material:     idx.cell(row, domain.ColumnMaterial),
		Hierarchy:    idx.cell(row, domain.ColumnHierarchy),
		Quantity:     idx.cell(row, domain.ColumnQuantity),
		DiscountPct:  parseDecimal(idx.cell(row, domain.ColumnDiscountPct)),
		NetValue:     parseDecimal(idx.cell(row, domain.ColumnNetValue)),
	}
}

func parseDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// parseWarehouse accepts integral numbers only ("1041", "1041.0").
func parseWarehouse(s string) *int {
	d := parseDecimal(s)
	if !d.Valid || !d.Decimal.IsInteger() {
		return nil
	}
	code := int(d.Decimal.IntPart())
	return &code
}
