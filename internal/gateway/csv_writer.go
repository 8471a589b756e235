package gateway

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"discount-audit/internal/domain"
)

// WriteRecordsCSV writes records as UTF-8 CSV using the given canonical columns.
func WriteRecordsCSV(w io.Writer, columns []string, records []domain.AnnotatedRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	line := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			value, err := cellValue(rec, col)
			if err != nil {
				return err
			}
			line[i] = value
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rec.Row, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportCSV writes records to the file at path, replacing it if it exists.
func ExportCSV(path string, columns []string, records []domain.AnnotatedRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file %s: %w", path, err)
	}

	if err := WriteRecordsCSV(file, columns, records); err != nil {
		file.Close()
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	return file.Close()
}

func cellValue(rec domain.AnnotatedRecord, column string) (string, error) {
	switch column {
	case domain.ColumnInvoiceDate:
		return rec.InvoiceDate, nil
	case domain.ColumnWarehouse:
		if rec.Warehouse == nil {
			return "", nil
		}
		return strconv.Itoa(*rec.Warehouse), nil
	case domain.ColumnSaleType:
		return rec.SaleType, nil
	case domain.ColumnSaleZone:
		return rec.SaleZone, nil
	case domain.ColumnRequester:
		return rec.Requester, nil
	case domain.ColumnCustomerName:
		return rec.CustomerName, nil
	case domain.ColumnProductCode:
		return rec.ProductCode, nil
	case domain.ColumnMaterial:
		return rec.Material, nil
	case domain.ColumnHierarchy:
		return rec.Hierarchy, nil
	case domain.ColumnQuantity:
		return rec.Quantity, nil
	case domain.ColumnDiscountPct:
		if !rec.DiscountPct.Valid {
			return "", nil
		}
		return rec.DiscountPct.Decimal.String(), nil
	case domain.ColumnNetValue:
		if !rec.NetValue.Valid {
			return "", nil
		}
		return rec.NetValue.Decimal.String(), nil
	case domain.ColumnAlert:
		return string(rec.Alert), nil
	default:
		return "", fmt.Errorf("unknown export column %q", column)
	}
}
