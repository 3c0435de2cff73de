package salaryslip

import (
	"sort"
	"time"

	"github.com/faisallbhr/simple-hris/internal/shared/pdf"
)

// PayslipData flattens a slip snapshot into what the payslip template draws.
func PayslipData(slip SalarySlip, generatedAt time.Time) pdf.PayslipData {
	data := slip.SlipData.Data()

	out := pdf.PayslipData{
		SlipID:      slip.ID.String(),
		PeriodStart: data.Period.Start,
		PeriodEnd:   data.Period.End,
		BaseSalary:  data.BaseSalary,
		Bonus:       data.Bonus,
		Allowances:  lines(data.Allowances),
		Deductions:  lines(data.Deductions),
		NetSalary:   data.NetSalary,
		GeneratedAt: generatedAt.Format("2006-01-02 15:04"),
	}
	if slip.Employee != nil {
		out.EmployeeName = slip.Employee.Name
		out.EmployeeMail = slip.Employee.Email
		if slip.Employee.Department != nil {
			out.Department = slip.Employee.Department.Name
		}
	}
	return out
}

func lines(items map[string]int64) []pdf.PayslipLine {
	out := make([]pdf.PayslipLine, 0, len(items))
	for name, amount := range items {
		out = append(out, pdf.PayslipLine{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
