package domain

// Canonical column names of the sales report.
const (
	ColumnInvoiceDate  = "Fecha factura"
	ColumnWarehouse    = "Almacen"
	ColumnSaleType     = "Tipo Venta"
	ColumnSaleZone     = "Zona de Venta"
	ColumnRequester    = "Solicitante"
	ColumnCustomerName = "Nombre 1"
	ColumnProductCode  = "Codigo"
	ColumnMaterial     = "Material"
	ColumnHierarchy    = "Jerarquia"
	ColumnDiscountPct  = "% Desc"
	ColumnNetValue     = "Valor neto"
	ColumnQuantity     = "Cant"
	ColumnAlert        = "Alerta_Descuento"
)

// RequiredColumns must be present in every report, in this order of reporting.
var RequiredColumns = []string{
	ColumnInvoiceDate,
	ColumnWarehouse,
	ColumnSaleType,
	ColumnSaleZone,
	ColumnRequester,
	ColumnCustomerName,
	ColumnProductCode,
	ColumnMaterial,
	ColumnHierarchy,
	ColumnDiscountPct,
	ColumnNetValue,
}

// ColumnAliases maps every accepted (trimmed) source header onto its canonical name.
var ColumnAliases = map[string]string{
	"Fecha factura": ColumnInvoiceDate,
	"Almacen":       ColumnWarehouse,
	"Tipo Venta":    ColumnSaleType,
	"Zona de Venta": ColumnSaleZone,
	"Solicitante":   ColumnRequester,
	"Nombre 1":      ColumnCustomerName,
	"Codigo":        ColumnProductCode,
	"codigo":        ColumnProductCode,
	"Material":      ColumnMaterial,
	"Jerarquia":     ColumnHierarchy,
	"jerarquia":     ColumnHierarchy,
	"% Desc":        ColumnDiscountPct,
	"Descuento %":   ColumnDiscountPct,
	"Valor neto":    ColumnNetValue,
	"Valor Neto":    ColumnNetValue,
	"VALOR NETO":    ColumnNetValue,
	"Cant":          ColumnQuantity,
}

// AlertExportColumns is the column layout of the alert-only CSV export.
var AlertExportColumns = []string{
	ColumnInvoiceDate,
	ColumnWarehouse,
	ColumnCustomerName,
	ColumnProductCode,
	ColumnMaterial,
	ColumnHierarchy,
	ColumnDiscountPct,
	ColumnNetValue,
	ColumnAlert,
}

// FullExportColumns is the column layout of the full annotated CSV export.
var FullExportColumns = []string{
	ColumnInvoiceDate,
	ColumnWarehouse,
	ColumnCustomerName,
	ColumnProductCode,
	ColumnMaterial,
	ColumnHierarchy,
	ColumnQuantity,
	ColumnDiscountPct,
	ColumnNetValue,
	ColumnAlert,
}
