package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const TemplatePayslip = "payslip"

// Renderer turns a named template and its data into PDF bytes.
type Renderer interface {
	Render(templateName string, data any) ([]byte, error)
}

type templateFunc func(doc *fpdf.Fpdf, data any) error

type fpdfRenderer struct {
	templates map[string]templateFunc
}

func NewRenderer() Renderer {
	return &fpdfRenderer{
		templates: map[string]templateFunc{
			TemplatePayslip: drawPayslip,
		},
	}
}

func (r *fpdfRenderer) Render(templateName string, data any) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Errorf("render %s panic recover: %v", templateName, rec)
		}
	}()

	draw, ok := r.templates[templateName]
	if !ok {
		return nil, errors.Errorf("unknown pdf template %q", templateName)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	if err := draw(doc, data); err != nil {
		return nil, errors.Wrapf(err, "draw %s", templateName)
	}
	if doc.Err() {
		return nil, errors.Wrapf(doc.Error(), "draw %s", templateName)
	}

	buf := new(bytes.Buffer)
	if err := doc.Output(buf); err != nil {
		return nil, errors.Wrapf(err, "output %s", templateName)
	}
	return buf.Bytes(), nil
}

// FormatRupiah renders an amount with '.' as thousands separator, e.g.
// "Rp 5.150.000" or "-Rp 150.000".
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var b bytes.Buffer
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}
	return sign + "Rp " + b.String()
}
