package infra

// pdf.go — Printable register session report using go-pdf/fpdf.
// One page per session: opening data, reconciliation breakdown, and the
// closing figures when the register is already closed.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"tillpoint/internal/dto"
)

// GenerateRegisterReportPDF renders the session report to
// storagePath/register_{id}.pdf and returns the absolute file path.
func GenerateRegisterReportPDF(report *dto.RegisterReportResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("register_%s.pdf", report.Register.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "TillPoint", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Cash Register Session Report", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Session info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Register %s", report.Register.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, fmt.Sprintf("Status: %s", report.Register.Status), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, fmt.Sprintf("Opened %s by %s", report.Register.OpenedAt, report.Register.OpenedBy), "", 1, "L", false, 0, "")
	if report.Register.ClosedAt != nil && report.Register.ClosedBy != nil {
		pdf.CellFormat(contentW, 4, fmt.Sprintf("Closed %s by %s", *report.Register.ClosedAt, *report.Register.ClosedBy), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Reconciliation breakdown ─────────────────────────────────────────────
	line := func(label string, amount decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(contentW*0.6, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 5, amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	rec := report.Reconciliation
	line("Opening balance", rec.OpeningBalance, false)
	line(fmt.Sprintf("Sales (%d)", report.SaleCount), rec.TotalSales, false)
	line("Supplies", rec.TotalSupplies, false)
	line("Bleeds", rec.TotalBleeds.Neg(), false)
	line("Change", rec.TotalChange.Neg(), false)
	pdf.Line(12, pdf.GetY()+1, 12+contentW, pdf.GetY()+1)
	pdf.Ln(2)
	line("Expected balance", rec.Expected, true)

	if report.Register.ClosingBalance != nil && report.Register.Difference != nil {
		pdf.Ln(2)
		line("Counted at close", *report.Register.ClosingBalance, true)
		line("Difference", *report.Register.Difference, true)
	}

	if report.Register.Notes != nil && *report.Register.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, "Notes: "+*report.Register.Notes, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write report: %w", err)
	}
	return filePath, nil
}
