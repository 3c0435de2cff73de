package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

// Table is a rectangular export with a heading row.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]any
}

// Export encodes t as xlsx or csv and reports the content type to serve it with.
func Export(t Table, format string) ([]byte, string, error) {
	switch format {
	case FormatXLSX:
		data, err := exportXLSX(t)
		return data, ContentTypeXLSX, err
	case FormatCSV:
		data, err := exportCSV(t)
		return data, ContentTypeCSV, err
	default:
		return nil, "", errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
}

func exportXLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, errors.Wrap(err, "rename sheet")
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, errors.Wrap(err, "header style")
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "stream writer")
	}
	if len(t.Headers) > 0 {
		if err := sw.SetColWidth(1, len(t.Headers), 22); err != nil {
			return nil, errors.Wrap(err, "column width")
		}
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, errors.Wrapf(err, "write row %d", i+2)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, errors.Wrap(err, "flush sheet")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "write workbook")
	}
	return buf.Bytes(), nil
}

func exportCSV(t Table) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, errors.Wrap(err, "write header")
	}
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				record[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(record); err != nil {
			return nil, errors.Wrap(err, "write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}
