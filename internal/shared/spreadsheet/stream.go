package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const DefaultChunkSize = 500

// RowStream yields data rows in file order, chunk by chunk. It cannot be
// rewound; NextChunk returns io.EOF once every row has been read.
type RowStream interface {
	ChunkSize() int
	NextChunk() ([]Row, error)
	Close() error
}

type lineReader interface {
	next() ([]string, error)
	close() error
}

type stream struct {
	reader    lineReader
	headings  []string
	chunkSize int
	line      int
	done      bool
}

// Open decodes data according to format. The first line is treated as the
// heading row.
func Open(data []byte, format string, chunkSize int) (RowStream, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var (
		lr  lineReader
		err error
	)
	switch format {
	case FormatXLSX:
		lr, err = newExcelReader(data)
	case FormatCSV:
		lr = newCSVReader(data)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	if err != nil {
		return nil, err
	}

	s := &stream{reader: lr, chunkSize: chunkSize}
	header, err := lr.next()
	if err == io.EOF {
		s.done = true
		return s, nil
	}
	if err != nil {
		_ = lr.close()
		return nil, errors.Wrap(err, "read heading row")
	}
	s.line = 1
	for _, h := range header {
		s.headings = append(s.headings, normalizeHeading(h))
	}
	return s, nil
}

func (s *stream) ChunkSize() int {
	return s.chunkSize
}

func (s *stream) NextChunk() ([]Row, error) {
	if s.done {
		return nil, io.EOF
	}

	chunk := make([]Row, 0, s.chunkSize)
	for len(chunk) < s.chunkSize {
		cols, err := s.reader.next()
		if err == io.EOF {
			s.done = true
			break
		}
		if err != nil {
			return chunk, errors.Wrapf(err, "read line %d", s.line+1)
		}
		s.line++

		row := Row{Number: s.line, Values: make(map[string]string, len(s.headings))}
		for i, h := range s.headings {
			if h == "" {
				continue
			}
			if i < len(cols) {
				row.Values[h] = cols[i]
			} else {
				row.Values[h] = ""
			}
		}
		if row.IsBlank() {
			continue
		}
		chunk = append(chunk, row)
	}

	if len(chunk) == 0 && s.done {
		return nil, io.EOF
	}
	return chunk, nil
}

func (s *stream) Close() error {
	return s.reader.close()
}

type excelReader struct {
	file *excelize.File
	rows *excelize.Rows
}

func newExcelReader(data []byte) (*excelReader, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "open sheet %s", sheets[0])
	}
	return &excelReader{file: f, rows: rows}, nil
}

func (r *excelReader) next() ([]string, error) {
	if !r.rows.Next() {
		if err := r.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return r.rows.Columns()
}

func (r *excelReader) close() error {
	_ = r.rows.Close()
	return r.file.Close()
}

type csvReader struct {
	r *csv.Reader
}

func newCSVReader(data []byte) *csvReader {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return &csvReader{r: r}
}

func (r *csvReader) next() ([]string, error) {
	return r.r.Read()
}

func (r *csvReader) close() error {
	return nil
}
