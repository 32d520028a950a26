// Package reports renders report data into downloadable files.
package reports

import (
	"fmt"
	"io"

	"inventory-service/internal/core"

	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of the workbooks produced here.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const inventorySheet = "Inventory"

var inventoryHeadings = []string{"SKU", "Name", "Group", "Quantity", "Min Threshold", "Low Stock", "Price", "Value"}

// InventoryWorkbook lays out the inventory value report as a single sheet with a total row.
func InventoryWorkbook(report *core.InventoryValueReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return nil, err
	}

	for i, h := range inventoryHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(inventorySheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, l := range report.Lines {
		row := i + 2
		values := []any{
			l.SKU, l.Name, l.ProductGroup, l.Quantity, l.MinThreshold,
			lowStockLabel(l.Quantity <= l.MinThreshold),
			l.Price.InexactFloat64(), l.Value.InexactFloat64(),
		}
		if err := f.SetSheetRow(inventorySheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, err
		}
	}

	totalRow := len(report.Lines) + 2
	if err := f.SetCellValue(inventorySheet, fmt.Sprintf("G%d", totalRow), "Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(inventorySheet, fmt.Sprintf("H%d", totalRow), report.Total.InexactFloat64()); err != nil {
		return nil, err
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(inventorySheet, "G2", fmt.Sprintf("H%d", totalRow), money); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(inventorySheet, 1, 1, bold); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteInventory streams the inventory workbook to w.
func WriteInventory(w io.Writer, report *core.InventoryValueReport) error {
	f, err := InventoryWorkbook(report)
	if err != nil {
		return fmt.Errorf("build inventory workbook: %w", err)
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write inventory workbook: %w", err)
	}
	return nil
}

func lowStockLabel(low bool) string {
	if low {
		return "yes"
	}
	return ""
}
