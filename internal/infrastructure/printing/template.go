package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

// Document names
const (
	DocumentInvoice = "invoice.html"
)

// TemplateEngine renders the embedded document templates
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses the embedded templates. currencyCode is the ISO
// code money is printed in.
func NewTemplateEngine(currencyCode string) (*TemplateEngine, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", currencyCode, err)
	}
	tmpl, err := template.New("documents").Funcs(FuncMap(unit)).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse document templates: %w", err)
	}
	return &TemplateEngine{templates: tmpl}, nil
}

// Render executes the named template with data
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}

// FuncMap returns the template helpers, printing money in unit
func FuncMap(unit currency.Unit) template.FuncMap {
	printer := message.NewPrinter(language.English)
	symbol := printer.Sprint(currency.Symbol(unit))
	title := cases.Title(language.English)

	return template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return FormatMoney(symbol, d)
		},
		"decimal": func(d decimal.Decimal) string {
			return d.String()
		},
		"status": func(s string) string {
			return title.String(strings.ReplaceAll(s, "_", " "))
		},
		"upper": strings.ToUpper,
	}
}

// FormatMoney prints d with thousands separators and two decimals
func FormatMoney(symbol string, d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + symbol + b.String() + "." + frac
}

func templateEscape(s string) string {
	return html.EscapeString(s)
}
