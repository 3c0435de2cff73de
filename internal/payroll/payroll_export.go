package payroll

import (
	"context"
	"fmt"
	"strings"
	"time"

	payrollerrors "github.com/faisallbhr/simple-hris/internal/payroll/errors"
	"github.com/faisallbhr/simple-hris/internal/rbac"
	"github.com/faisallbhr/simple-hris/internal/shared/spreadsheet"
)

type exportColumn struct {
	key    string
	header string
	value  func(p Payroll) any
}

var exportColumns = []exportColumn{
	{"id", "ID", func(p Payroll) any { return p.ID.String() }},
	{"employee_id", "Employee ID", func(p Payroll) any { return p.EmployeeID.String() }},
	{"employee_name", "Employee", func(p Payroll) any {
		if p.Employee == nil {
			return ""
		}
		return p.Employee.Name
	}},
	{"period_start", "Period Start", func(p Payroll) any { return p.PeriodStart.Format(dateLayout) }},
	{"period_end", "Period End", func(p Payroll) any { return p.PeriodEnd.Format(dateLayout) }},
	{"base_salary", "Base Salary", func(p Payroll) any { return p.BaseSalary }},
	{"details", "Details", func(p Payroll) any { return string(p.Details) }},
	{"net_salary", "Net Salary", func(p Payroll) any { return p.NetSalary }},
	{"status", "Status", func(p Payroll) any { return p.Status }},
	{"paid_at", "Paid At", func(p Payroll) any {
		if p.PaidAt == nil {
			return ""
		}
		return p.PaidAt.Format("2006-01-02 15:04:05")
	}},
	{"is_generated", "Is Generated", func(p Payroll) any {
		if p.IsGenerated {
			return "Yes"
		}
		return "No"
	}},
	{"processed_by", "Processed By", func(p Payroll) any {
		if p.Processor == nil {
			return p.ProcessedBy.String()
		}
		return p.Processor.Name
	}},
}

var defaultExportColumns = []string{
	"id", "employee_name", "period_start", "period_end",
	"base_salary", "net_salary", "status", "paid_at", "is_generated",
}

func resolveExportColumns(keys []string) ([]exportColumn, error) {
	if len(keys) == 0 {
		keys = defaultExportColumns
	}

	byKey := make(map[string]exportColumn, len(exportColumns))
	for _, c := range exportColumns {
		byKey[c.key] = c
	}

	out := make([]exportColumn, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		col, ok := byKey[key]
		if !ok {
			return nil, payrollerrors.ErrInvalidExportColumn
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, col)
	}
	return out, nil
}

// Export writes every payroll matching the filter, ignoring pagination.
func (s *service) Export(ctx context.Context, actorID string, req ExportRequest) (FileDownload, error) {
	if err := s.authorize(ctx, actorID, rbac.PermViewPayrolls); err != nil {
		return FileDownload{}, err
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format != spreadsheet.FormatXLSX && format != spreadsheet.FormatCSV {
		return FileDownload{}, payrollerrors.ErrInvalidExportFormat
	}
	columns, err := resolveExportColumns(req.Columns)
	if err != nil {
		return FileDownload{}, err
	}

	filter := req.Filter
	filter.Page, filter.PageSize = 0, 0
	if err := validateFilter(filter); err != nil {
		return FileDownload{}, err
	}
	if err := s.scopeToProcessor(ctx, actorID, &filter); err != nil {
		return FileDownload{}, err
	}

	payrolls, _, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return FileDownload{}, err
	}

	table := spreadsheet.Table{
		Sheet:   "Payrolls",
		Headers: make([]string, len(columns)),
		Rows:    make([][]any, len(payrolls)),
	}
	for i, col := range columns {
		table.Headers[i] = col.header
	}
	for i, p := range payrolls {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = col.value(p)
		}
		table.Rows[i] = row
	}

	content, contentType, err := spreadsheet.Export(table, format)
	if err != nil {
		return FileDownload{}, err
	}

	return FileDownload{
		FileName:    fmt.Sprintf("payrolls_%s.%s", s.now().Format("2006-01-02_15-04-05"), format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

// parseFilterDate reads an optional YYYY-MM-DD query value.
func parseFilterDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := parseDate(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
