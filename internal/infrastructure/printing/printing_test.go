package printing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

type testInvoice struct {
	Number, Client, Status, Issued, Due, Notes string
	Amount                                     decimal.Decimal
}

type testBrand struct{ Name, Color string }

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"999.5", "$999.50"},
		{"1234.567", "$1,234.57"},
		{"1000000", "$1,000,000.00"},
		{"-42000.1", "-$42,000.10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney("$", decimal.RequireFromString(tt.in)))
		})
	}
}

func TestTemplateEngine_Invoice(t *testing.T) {
	engine, err := NewTemplateEngine("USD")
	require.NoError(t, err)

	data := map[string]any{
		"Invoice": testInvoice{
			Number: "NW-2026-001", Client: "Harbor <Dental>", Status: "in_review",
			Issued: "2026-02-01", Amount: decimal.RequireFromString("9150"),
		},
		"Brand": testBrand{Name: "Northwind Studio", Color: "#2563eb"},
		"Lines": []testLine{{
			Description: "Milestone 2", Quantity: decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(9000), Total: decimal.NewFromInt(9000),
		}},
		"GeneratedAt": "2026-02-02",
	}
	out, err := engine.Render(DocumentInvoice, data)
	require.NoError(t, err)

	assert.Contains(t, out, "Invoice NW-2026-001")
	assert.Contains(t, out, "Northwind Studio")
	assert.Contains(t, out, "9,150.00")
	assert.Contains(t, out, "In Review")
	assert.Contains(t, out, "Harbor &lt;Dental&gt;")
	assert.Contains(t, out, "on receipt")
}

func TestTemplateEngine_Errors(t *testing.T) {
	_, err := NewTemplateEngine("NOPE")
	assert.Error(t, err)

	engine, err := NewTemplateEngine("EUR")
	require.NoError(t, err)
	_, err = engine.Render("missing.html", nil)
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ErrCodeTemplateFailed, rerr.Code)
}

func TestBuildPrintParams(t *testing.T) {
	p := buildPrintParams(&RenderRequest{Paper: PaperA4, Margins: DefaultMargins()})
	assert.InDelta(t, mmToInches(210), p.paperWidth, 0.001)
	assert.InDelta(t, mmToInches(297), p.paperHeight, 0.001)
	assert.False(t, p.landscape)

	p = buildPrintParams(&RenderRequest{Paper: PaperLetter, Landscape: true, FooterHTML: "<span class=pageNumber></span>"})
	assert.InDelta(t, 8.5, p.paperWidth, 0.001)
	assert.True(t, p.landscape)
	assert.InDelta(t, mmToInches(10), p.marginBottom, 0.001)
}

func TestWrapDocument(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, wrapDocument(&RenderRequest{HTML: full}))

	wrapped := wrapDocument(&RenderRequest{HTML: "<p>x</p>", Title: "A & B"})
	assert.True(t, strings.HasPrefix(wrapped, "<!DOCTYPE html>"))
	assert.Contains(t, wrapped, "<title>A &amp; B</title>")
	assert.Contains(t, wrapped, "<body><p>x</p></body>")
}

func TestCountPages(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, countPages(pdf))
	assert.Equal(t, 1, countPages([]byte("garbage")))
}

func TestChromedpRenderer_RejectsBadRequests(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{DefaultTimeout: time.Second})
	defer r.Close()

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "  "})
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ErrCodeInvalidHTML, rerr.Code)

	_, err = r.Render(context.Background(), &RenderRequest{HTML: "<p>x</p>", Paper: "A0"})
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ErrCodeInvalidPaperSize, rerr.Code)
}
