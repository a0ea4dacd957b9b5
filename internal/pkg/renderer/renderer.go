package renderer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Placeholder keys the payslip template substitutes.
const (
	FieldEmployeeName    = "NOMBRE_EMPLEADO"
	FieldNationalID      = "CEDULA"
	FieldJobPosition     = "PUESTO"
	FieldPayrollDate     = "FECHA_NOMINA"
	FieldPayrollMonth    = "MES_NOMINA"
	FieldSummary         = "SUMMARY"
	FieldEarningsDesc    = "DESC_INGRESOS"
	FieldEarningsAmt     = "AMT_INGR"
	FieldDeductionsDesc  = "DESC_DESCUENTOS"
	FieldDeductionsAmt   = "AMT_DESC"
	FieldTotalEarnings   = "TOTAL_INGRESOS"
	FieldTotalDeductions = "TOTAL_DESCUENTOS"
	FieldNetPay          = "SUELDO_NETO"
)

// Renderer fills the payslip template with named fields and exports the
// final document bytes. The export format is fixed by the implementation;
// callers treat the result as an opaque artifact.
type Renderer interface {
	Render(ctx context.Context, fields map[string]string) ([]byte, error)
}

type templateRenderer struct {
	tmpl *template.Template
}

// NewTemplateRenderer parses the embedded payslip template.
func NewTemplateRenderer() (Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse payslip template: %w", err)
	}
	return &templateRenderer{tmpl: tmpl}, nil
}

func (r *templateRenderer) Render(ctx context.Context, fields map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "payslip.html", fields); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}
