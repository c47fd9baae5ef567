package infra

// pdf.go — end-of-shift report generation using go-pdf/fpdf.
// Produces an A5 closure report with the opening float, sales per payment
// method, cash refunds, the expected vs counted drawer amounts and the
// signed difference. Attached to the shift report email.

import (
	"fmt"
	"os"
	"path/filepath"

	"restopos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ShiftReportData carries everything the closure report prints. Sales figures
// are the ledger-derived totals, not the cached shift columns.
type ShiftReportData struct {
	Shift         *model.Shift
	CashSales     decimal.Decimal
	CardSales     decimal.Decimal
	TransferSales decimal.Decimal
	CashRefunds   decimal.Decimal
	TotalOrders   int
}

// GenerateShiftReportPDF writes the closure report for a CLOSED shift and
// returns the absolute path of the generated file.
func GenerateShiftReportPDF(data ShiftReportData, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	shift := data.Shift
	fileName := fmt.Sprintf("cierre_%s.pdf", shift.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Cierre de Turno", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	operator := ""
	if shift.Operator != nil {
		operator = shift.Operator.Name
	}
	pdf.CellFormat(contentW, 5, "Cajero: "+operator, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Apertura: "+shift.OpenedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if shift.ClosedAt != nil {
		pdf.CellFormat(contentW, 5, "Cierre: "+shift.ClosedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	labelW := contentW * 0.6
	valueW := contentW * 0.4

	row := func(label string, amount decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, "$"+amount.StringFixed(0), "", 1, "R", false, 0, "")
	}

	// ── Sales ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Ventas (%d pedidos)", data.TotalOrders), "", 1, "L", false, 0, "")
	row("Efectivo", data.CashSales, false)
	row("Tarjeta", data.CardSales, false)
	row("Transferencia", data.TransferSales, false)
	if !data.CashRefunds.IsZero() {
		row("Devoluciones en efectivo", data.CashRefunds.Neg(), false)
	}
	row("Total", data.CashSales.Add(data.CardSales).Add(data.TransferSales), true)
	pdf.Ln(3)

	// ── Drawer ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Caja", "", 1, "L", false, 0, "")
	row("Fondo inicial", shift.OpeningAmount, false)
	if shift.ExpectedAmount != nil {
		row("Efectivo esperado", *shift.ExpectedAmount, false)
	}
	if shift.ClosingAmount != nil {
		row("Efectivo contado", *shift.ClosingAmount, false)
	}
	if shift.Difference != nil {
		label := "Diferencia"
		switch {
		case shift.Difference.IsPositive():
			label = "Diferencia (sobrante)"
		case shift.Difference.IsNegative():
			label = "Diferencia (faltante)"
		}
		row(label, *shift.Difference, true)
	}

	if shift.Notes != nil && *shift.Notes != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, "Notas: "+*shift.Notes, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
