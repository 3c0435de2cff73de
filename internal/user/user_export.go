package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/faisallbhr/simple-hris/internal/shared/spreadsheet"
	usererrors "github.com/faisallbhr/simple-hris/internal/user/errors"
)

type exportColumn struct {
	key    string
	header string
	value  func(u User) any
}

var exportColumns = []exportColumn{
	{"name", "Name", func(u User) any { return u.Name }},
	{"email", "Email", func(u User) any { return u.Email }},
	{"manager_name", "Manager", func(u User) any {
		if u.Manager == nil {
			return "-"
		}
		return u.Manager.Name
	}},
	{"department_name", "Department", func(u User) any {
		if u.Department == nil {
			return "-"
		}
		return u.Department.Name
	}},
}

var defaultExportColumns = []string{"name", "email", "manager_name", "department_name"}

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
			return nil, usererrors.ErrInvalidExportColumn
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, col)
	}
	return out, nil
}

func (s *service) Export(ctx context.Context, req ExportRequest) (FileDownload, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format != spreadsheet.FormatXLSX && format != spreadsheet.FormatCSV {
		return FileDownload{}, usererrors.ErrInvalidExportFormat
	}
	columns, err := resolveExportColumns(req.Columns)
	if err != nil {
		return FileDownload{}, err
	}

	filter := req.Filter
	filter.Page, filter.PageSize = 0, 0
	if filter.Sort == "" {
		filter.Sort, filter.Direction = "name", "asc"
	}

	users, _, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return FileDownload{}, err
	}

	table := spreadsheet.Table{
		Sheet:   "Users",
		Headers: make([]string, len(columns)),
		Rows:    make([][]any, len(users)),
	}
	for i, col := range columns {
		table.Headers[i] = col.header
	}
	for i, u := range users {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = col.value(u)
		}
		table.Rows[i] = row
	}

	content, contentType, err := spreadsheet.Export(table, format)
	if err != nil {
		return FileDownload{}, err
	}

	return FileDownload{
		FileName:    fmt.Sprintf("export_users_%s.%s", s.now().Format("2006_01_02_15_04_05"), format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func parseFilterDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, usererrors.ErrInvalidDateFormat
	}
	return &t, nil
}
