package pdf

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

type PayslipLine struct {
	Name   string
	Amount int64
}

type PayslipData struct {
	SlipID       string
	EmployeeName string
	EmployeeMail string
	Department   string
	PeriodStart  string
	PeriodEnd    string
	BaseSalary   int64
	Bonus        int64
	Allowances   []PayslipLine
	Deductions   []PayslipLine
	NetSalary    int64
	GeneratedAt  string
}

func drawPayslip(doc *fpdf.Fpdf, data any) error {
	slip, ok := data.(PayslipData)
	if !ok {
		if p, isPtr := data.(*PayslipData); isPtr && p != nil {
			slip = *p
		} else {
			return fmt.Errorf("payslip template expects PayslipData, got %T", data)
		}
	}

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "Salary Slip", "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("Period: %s - %s", slip.PeriodStart, slip.PeriodEnd), "", 1, "C", false, 0, "")
	doc.Ln(4)

	info := [][2]string{
		{"Employee", slip.EmployeeName},
		{"Email", slip.EmployeeMail},
		{"Department", slip.Department},
		{"Slip No.", slip.SlipID},
	}
	for _, row := range info {
		if row[1] == "" {
			continue
		}
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(35, 6, row[0], "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 6, ": "+row[1], "", 1, "L", false, 0, "")
	}
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(120, 8, "Description", "1", 0, "L", true, 0, "")
	doc.CellFormat(70, 8, "Amount", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	line := func(label string, amount int64) {
		doc.CellFormat(120, 7, label, "1", 0, "L", false, 0, "")
		doc.CellFormat(70, 7, FormatRupiah(amount), "1", 1, "R", false, 0, "")
	}
	line("Base Salary", slip.BaseSalary)
	if slip.Bonus != 0 {
		line("Bonus", slip.Bonus)
	}
	for _, a := range slip.Allowances {
		line("Allowance - "+a.Name, a.Amount)
	}
	for _, d := range slip.Deductions {
		line("Deduction - "+d.Name, -d.Amount)
	}

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(120, 8, "Net Salary", "1", 0, "L", false, 0, "")
	doc.CellFormat(70, 8, FormatRupiah(slip.NetSalary), "1", 1, "R", false, 0, "")

	if slip.GeneratedAt != "" {
		doc.Ln(6)
		doc.SetFont("Helvetica", "I", 8)
		doc.CellFormat(0, 5, "Generated at "+slip.GeneratedAt, "", 1, "R", false, 0, "")
	}
	return nil
}
