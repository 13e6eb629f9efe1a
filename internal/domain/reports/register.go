package reports

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"paybatch/internal/domain/batch"
)

// CheckRegisterPDF renders a simple register for one committed week's
// checks: number, payee, date, work week, amount, with a total row.
func CheckRegisterPDF(companyName, weekKey string, checks []batch.Check) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Check Register")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Company: %s", companyName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Week of %s", weekKey))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(20, 7, "Check #", "B", 0, "L", false, 0, "")
	pdf.CellFormat(70, 7, "Payee", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Date", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Work Week", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	total := decimal.Zero
	for _, check := range checks {
		payee := check.EmployeeName
		if check.Expense && check.Memo != "" {
			payee = fmt.Sprintf("%s (%s)", check.EmployeeName, check.Memo)
		}
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", check.Number), "", 0, "L", false, 0, "")
		pdf.CellFormat(70, 6, payee, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, check.Date, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, check.WorkWeek, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, check.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		total = total.Add(check.Amount)
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(155, 7, fmt.Sprintf("Total (%d checks)", len(checks)), "T", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, total.StringFixed(2), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
