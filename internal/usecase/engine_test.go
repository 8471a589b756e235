package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discount-audit/internal/config"
	"discount-audit/internal/domain"
	"discount-audit/internal/usecase"
)

var reportHeader = []string{
	"Fecha factura", "Almacen", "Tipo Venta", "Zona de Venta", "Solicitante", "Nombre 1",
	"Codigo", "Material", "Jerarquia", "Cant", "% Desc", "Valor neto",
}

// row builds a report line in reportHeader order.
func row(warehouse, zone, requester, code, hierarchy, discount, netValue string) []string {
	return []string{"2025-09-01", warehouse, "ZVEN", zone, requester, "Cliente", code, "Producto", hierarchy, "1", discount, netValue}
}

func newTable(rows ...[]string) *domain.Table {
	return &domain.Table{Source: "report.csv", Header: reportHeader, HeaderLine: 2, Rows: rows}
}

func newEngine() *usecase.Engine {
	return usecase.NewEngine(usecase.NewRuleSet(config.Default().Rules), nil)
}

func TestNormalizeHeader(t *testing.T) {
	got := usecase.NormalizeHeader([]string{" Descuento % ", "codigo", "jerarquia", "VALOR NETO", "Valor Neto ", "Extra "})

	assert.Equal(t, []string{"% Desc", "Codigo", "Jerarquia", "Valor neto", "Valor neto", "Extra"}, got)
}

func TestEngine_Run(t *testing.T) {
	noFilters := domain.FilterOptions{}

	tests := []struct {
		name       string
		table      *domain.Table
		opts       domain.FilterOptions
		wantLabels []domain.AlertLabel
		wantAlerts []int // rows of the alert subset
		wantFilter domain.FilterSummary
		wantErr    error
		missingCol string
	}{
		{
			name: "labels every row and keeps order",
			table: newTable(
				row("1001", "NORTE", "100001", "9999999", "OTHER", "3", "1000"),
				row("1001", "NORTE", "100001", "3000113", "OTHER", "5.01", "2000"),
				row("1001", "NORTE", "200046", "9999999", "OTHER", "12", "3000"),
				row("1001", "NORTE", "200173", "9999999", "OTHER", "12", "4000"),
				row("1001", "NORTE", "100001", "9999999", "NUTRICIA", "6.5", "5000"),
				row("1001", "NORTE", "100001", "9999999", "OTHER", "7.5", "6000"),
			),
			opts: noFilters,
			wantLabels: []domain.AlertLabel{
				domain.AlertOK,
				domain.AlertControlledExceeded,
				domain.AlertIntercompanyAExceeded,
				domain.AlertIntercompanyBExceeded,
				domain.AlertBrandExceeded,
				domain.AlertGeneralExceeded,
			},
			wantAlerts: []int{4, 5, 6, 7, 8},
			wantFilter: domain.FilterSummary{Options: noFilters, RowsRead: 6, RowsKept: 6},
		},
		{
			name: "unparseable numbers are missing, not zero",
			table: newTable(
				row("abc", "MEDICOS PARTICULARES", "100001", "3000113", "OTHER", "n/a", "x"),
				row("1001", "NORTE", "100001", "9999999", "OTHER", "", ""),
			),
			opts:       noFilters,
			wantLabels: []domain.AlertLabel{domain.AlertOK, domain.AlertOK},
			wantAlerts: []int{},
			wantFilter: domain.FilterSummary{Options: noFilters, RowsRead: 2, RowsKept: 2},
		},
		{
			name: "employee zones excluded by default options",
			table: newTable(
				row("1001", "EMPLEADOS LQF", "100001", "9999999", "OTHER", "2", "100"),
				row("1001", "MEDICOS PARTICULARES", "100001", "9999999", "OTHER", "2", "100"),
				row("1012", "NORTE", "100001", "9999999", "OTHER", "9", "100"),
				row("1001", "NORTE", "100001", "9999999", "OTHER", "9", "100"),
			),
			opts:       domain.DefaultFilterOptions(),
			wantLabels: []domain.AlertLabel{domain.AlertGeneralExceeded},
			wantAlerts: []int{6},
			wantFilter: domain.FilterSummary{
				Options:                   domain.DefaultFilterOptions(),
				RowsRead:                  4,
				ExcludedByEmployeeZone:    2,
				ExcludedByOffersWarehouse: 1,
				RowsKept:                  1,
			},
		},
		{
			name: "row matching both filters counts under each",
			table: newTable(
				row("1012", "EMPLEADOS LQF", "100001", "9999999", "OTHER", "2", "100"),
				row("1001", "NORTE", "100001", "9999999", "OTHER", "1", "100"),
			),
			opts:       domain.DefaultFilterOptions(),
			wantLabels: []domain.AlertLabel{domain.AlertOK},
			wantAlerts: []int{},
			wantFilter: domain.FilterSummary{
				Options:                   domain.DefaultFilterOptions(),
				RowsRead:                  2,
				ExcludedByEmployeeZone:    1,
				ExcludedByOffersWarehouse: 1,
				RowsKept:                  1,
			},
		},
		{
			name: "everything filtered out",
			table: newTable(
				row("1012", "NORTE", "100001", "9999999", "OTHER", "2", "100"),
				row("1001", "EMPLEADOS LQF", "100001", "9999999", "OTHER", "2", "100"),
			),
			opts:    domain.DefaultFilterOptions(),
			wantErr: domain.ErrEmptyResultAfterFilter,
		},
		{
			name:    "no data rows",
			table:   newTable(),
			opts:    noFilters,
			wantErr: domain.ErrEmptyResultAfterFilter,
		},
		{
			name: "missing required column",
			table: &domain.Table{
				Source:     "report.csv",
				Header:     []string{"Fecha factura", "Almacen", "Tipo Venta", "Zona de Venta", "Solicitante", "Nombre 1", "Codigo", "Material", "Jerarquia", "% Desc"},
				HeaderLine: 2,
				Rows:       [][]string{{"2025-09-01", "1001", "ZVEN", "NORTE", "1", "C", "1", "M", "H", "9"}},
			},
			opts:       noFilters,
			missingCol: "Valor neto",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newEngine().Run(tt.table, tt.opts)

			if tt.missingCol != "" {
				var missing *domain.MissingColumnError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, tt.missingCol, missing.Column)
				assert.Nil(t, got)
				return
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFilter, got.Filter)

			gotLabels := make([]domain.AlertLabel, 0, len(got.Records))
			for _, rec := range got.Records {
				gotLabels = append(gotLabels, rec.Alert)
			}
			assert.Equal(t, tt.wantLabels, gotLabels)

			gotAlerts := make([]int, 0, len(got.Alerts))
			for _, rec := range got.Alerts {
				assert.NotEqual(t, domain.AlertOK, rec.Alert)
				gotAlerts = append(gotAlerts, rec.Row)
			}
			assert.Equal(t, tt.wantAlerts, gotAlerts)
		})
	}
}

func TestEngine_Run_ParsesRecords(t *testing.T) {
	table := &domain.Table{
		Source:     "report.csv",
		Header:     []string{"Fecha factura ", "Almacen", "Tipo Venta", "Zona de Venta", "Solicitante", "Nombre 1", "codigo", "Material", "jerarquia", "Descuento %", "VALOR NETO", "Ignored"},
		HeaderLine: 2,
		Rows: [][]string{
			{"2025-09-01", "1041.0", "ZVEN", " NORTE ", "000123", "Farmacia", "3000113", "Ibuprofeno", "NUTRICIA", "4.5", "150000", "x"},
		},
	}

	got, err := newEngine().Run(table, domain.FilterOptions{})
	require.NoError(t, err)
	require.Len(t, got.Records, 1)

	rec := got.Records[0]
	assert.Equal(t, 3, rec.Row)
	assert.Equal(t, "2025-09-01", rec.InvoiceDate)
	require.NotNil(t, rec.Warehouse)
	assert.Equal(t, 1041, *rec.Warehouse)
	assert.Equal(t, "NORTE", rec.SaleZone)
	assert.Equal(t, "000123", rec.Requester)
	assert.Equal(t, "3000113", rec.ProductCode)
	assert.Equal(t, "NUTRICIA", rec.Hierarchy)
	assert.Equal(t, "", rec.Quantity)
	assert.True(t, rec.DiscountPct.Valid)
	assert.Equal(t, "4.5", rec.DiscountPct.Decimal.String())
	assert.Equal(t, "150000", rec.NetValue.Decimal.String())
	assert.Equal(t, domain.AlertOK, rec.Alert)
}

func TestEngine_Run_RowNumbersFollowSourceLines(t *testing.T) {
	table := newTable(
		row("1001", "NORTE", "100001", "9999999", "OTHER", "2", "100"),
		row("1001", "NORTE", "100001", "9999999", "OTHER", "9", "100"),
	)
	// A blank line sat between the two rows in the source file.
	table.Lines = []int{3, 5}

	got, err := newEngine().Run(table, domain.FilterOptions{})
	require.NoError(t, err)

	require.Len(t, got.Records, 2)
	assert.Equal(t, 3, got.Records[0].Row)
	assert.Equal(t, 5, got.Records[1].Row)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, 5, got.Alerts[0].Row)
}

func TestEngine_Run_NonIntegralWarehouseIsMissing(t *testing.T) {
	got, err := newEngine().Run(newTable(row("1041.5", "EMPLEADOS LQF", "1", "1", "H", "1", "1")), domain.FilterOptions{})
	require.NoError(t, err)

	assert.Nil(t, got.Records[0].Warehouse)
	assert.Equal(t, domain.AlertIllegalEmployeeDiscount, got.Records[0].Alert)
}

func TestEngine_Run_Idempotent(t *testing.T) {
	table := newTable(
		row("1001", "EMPLEADOS LQF", "100001", "9999999", "OTHER", "2", "100"),
		row("1012", "NORTE", "200046", "9999999", "OTHER", "12", "100"),
		row("1001", "NORTE", "100001", "3000085", "OTHER", "6", "100"),
	)
	engine := newEngine()

	first, err := engine.Run(table, domain.FilterOptions{})
	require.NoError(t, err)
	second, err := engine.Run(table, domain.FilterOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_Filter_Independence(t *testing.T) {
	records := []domain.TransactionRecord{
		{Row: 1, SaleZone: "EMPLEADOS LQF", Warehouse: warehouse(1012)},
		{Row: 2, SaleZone: "MEDICOS PARTICULARES", Warehouse: warehouse(1001)},
		{Row: 3, SaleZone: "NORTE", Warehouse: warehouse(1012)},
		{Row: 4, SaleZone: "NORTE"},
	}
	engine := newEngine()

	for _, offers := range []bool{false, true} {
		without, _ := engine.Filter(records, domain.FilterOptions{ExcludeOffersWarehouse: offers})
		with, _ := engine.Filter(records, domain.FilterOptions{ExcludeEmployeeZones: true, ExcludeOffersWarehouse: offers})

		removed := difference(rowsOf(without), rowsOf(with))
		for _, r := range removed {
			zone := records[r-1].SaleZone
			assert.Contains(t, []string{"EMPLEADOS LQF", "MEDICOS PARTICULARES"}, zone)
		}
		for _, rec := range with {
			assert.NotContains(t, []string{"EMPLEADOS LQF", "MEDICOS PARTICULARES"}, rec.SaleZone)
		}
	}

	kept, summary := engine.Filter(records, domain.FilterOptions{ExcludeEmployeeZones: true})
	assert.Equal(t, []int{3, 4}, rowsOf(kept))
	assert.Equal(t, 2, summary.ExcludedByEmployeeZone)
	assert.Equal(t, 0, summary.ExcludedByOffersWarehouse)
}

func TestEngine_Evaluate_EmptyInput(t *testing.T) {
	got := newEngine().Evaluate(nil)

	assert.Empty(t, got.Records)
	assert.NotNil(t, got.Alerts)
	assert.Empty(t, got.Alerts)
}

func rowsOf(records []domain.TransactionRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.Row)
	}
	return out
}

func difference(a, b []int) []int {
	inB := make(map[int]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out []int
	for _, v := range a {
		if !inB[v] {
			out = append(out, v)
		}
	}
	return out
}

func TestErrEmptyResultAfterFilter_IsNotAnIngestionError(t *testing.T) {
	_, err := newEngine().Run(newTable(), domain.FilterOptions{})

	var ingestion *domain.IngestionError
	assert.False(t, errors.As(err, &ingestion))
	assert.ErrorIs(t, err, domain.ErrEmptyResultAfterFilter)
}
