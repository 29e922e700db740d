// Package pdf implementa el reporte de arqueo (cierre) de caja.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Caja + estado       │  Tipo de cierre + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESPONSABLE: usuario + observaciones                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ARQUEO: Apertura / Calculado / Declarado / Diferencia       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Método de pago | Neto                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: firmas                                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appcaja "github.com/jhoicas/Inmobiliaria-api/internal/application/caja"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 20, Blue: 20}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appcaja.ClosingPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa caja.ClosingPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
}

// NewMarotoPDFGenerator construye el generador; company aparece como autor del documento.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// GenerateClosingPDF genera el PDF del arqueo y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateClosingPDF(_ context.Context, report appcaja.ClosingReport) ([]byte, error) {
	if report.Caja == nil || report.Cierre == nil {
		return nil, fmt.Errorf("pdf: reporte incompleto")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Arqueo de caja", true).
		WithAuthor(nonEmpty(g.company, "Inmobiliaria"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report.Caja, report.Cierre))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(responsibleRow(report.UserName, report.Cierre))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(balancesRow(report.Cierre))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(methodHeaderRow())
	for _, r := range methodRows(report.Totals) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(12))
	m.AddRows(signatureRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre y estado de la caja (izq), tipo de cierre y fecha (der).
func headerRow(c *entity.Caja, cierre *entity.CierreCaja) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(c.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+c.State, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ARQUEO DE CAJA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("CIERRE "+cierre.Type, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+cierre.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// responsibleRow: usuario que realizó el arqueo y observaciones.
func responsibleRow(userName string, cierre *entity.CierreCaja) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RESPONSABLE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(userName, "(sin nombre)"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("Observaciones: "+nonEmpty(cierre.Observations, "ninguna"), props.Text{
				Size: 8, Top: 11, Color: colorGray,
			}),
		),
	)
}

// balancesRow: bloque de saldos alineado a la derecha.
func balancesRow(cierre *entity.CierreCaja) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	diffColor := colorPrimary
	if !cierre.Discrepancy.IsZero() {
		diffColor = colorRed
	}

	return row.New(26).Add(
		col.New(3),
		col.New(3).Add(
			label("Saldo inicial:"),
			label("Saldo calculado:"),
			label("Saldo declarado:"),
			text.New("DIFERENCIA:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: diffColor, Right: 2,
			}),
		),
		col.New(3).Add(
			value(money(cierre.OpeningBalance)),
			value(money(cierre.ComputedBalance)),
			value(money(cierre.DeclaredBalance)),
			text.New(money(cierre.Discrepancy), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: diffColor, Right: 1,
			}),
		),
		col.New(3),
	)
}

func methodHeaderRow() core.Row {
	return row.New(8).Add(
		col.New(8).Add(text.New("Método de pago", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2, Left: 1,
		})),
		col.New(4).Add(text.New("Neto", props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// methodRows: una fila por método de pago, en orden alfabético.
func methodRows(totals map[string]decimal.Decimal) []core.Row {
	methods := make([]string, 0, len(totals))
	for k := range totals {
		methods = append(methods, k)
	}
	sort.Strings(methods)

	if len(methods) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Sin movimientos registrados", props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray}),
		))}
	}
	result := make([]core.Row, 0, len(methods))
	for _, method := range methods {
		result = append(result, row.New(7).Add(
			col.New(8).Add(text.New(method, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(money(totals[method]), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		))
	}
	return result
}

func signatureRow() core.Row {
	sign := func(label string) core.Col {
		return col.New(6).Add(text.New("______________________________\n"+label, props.Text{
			Size: 8, Align: align.Center, Color: colorGray,
		}))
	}
	return row.New(16).Add(sign("Entrega"), sign("Recibe"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea con separador de miles y 2 decimales: -1234.5 → "-$1.234,50".
func money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + formatThousands(intPart) + "," + frac
}

// formatThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
