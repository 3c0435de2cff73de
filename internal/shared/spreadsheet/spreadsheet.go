package spreadsheet

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

var ErrUnsupportedFormat = errors.New("spreadsheet: unsupported format")

// Row is one data line keyed by its normalized heading.
type Row struct {
	// Number is the 1-based line in the sheet; the heading row is line 1.
	Number int
	Values map[string]string
}

func (r Row) Get(key string) string {
	return strings.TrimSpace(r.Values[key])
}

func (r Row) IsBlank() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// NormalizeFormat maps a file extension or name to a known format. Legacy
// BIFF .xls workbooks are refused; excelize only reads OOXML.
func NormalizeFormat(nameOrExt string) (string, error) {
	ext := strings.ToLower(nameOrExt)
	if i := strings.LastIndex(ext, "."); i >= 0 {
		ext = ext[i+1:]
	}
	switch ext {
	case FormatXLSX, FormatCSV:
		return ext, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%q", nameOrExt)
	}
}

// normalizeHeading turns "Department Name " into "department_name".
func normalizeHeading(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}
