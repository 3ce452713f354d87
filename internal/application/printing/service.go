// Package printing renders invoices as documents. With a PDF renderer
// configured the result is a PDF; otherwise the HTML page is returned as is.
package printing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agencyos/backend/internal/application/records"
	"github.com/agencyos/backend/internal/domain/brand"
	"github.com/agencyos/backend/internal/domain/finance"
	infra "github.com/agencyos/backend/internal/infrastructure/printing"
	"github.com/agencyos/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InvoiceSource selects invoices by id
type InvoiceSource interface {
	Get(ctx context.Context, id string) (*records.Detail[finance.Invoice], error)
}

// DocumentService turns invoices into printable documents
type DocumentService struct {
	invoices InvoiceSource
	engine   *infra.TemplateEngine
	renderer infra.PDFRenderer
	paper    infra.Paper
	logger   *zap.Logger
	now      func() time.Time
}

// NewDocumentService creates a new DocumentService. renderer may be nil.
func NewDocumentService(
	invoices InvoiceSource,
	engine *infra.TemplateEngine,
	renderer infra.PDFRenderer,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		invoices: invoices,
		engine:   engine,
		renderer: renderer,
		paper:    infra.PaperA4,
		logger:   logger,
		now:      time.Now,
	}
}

// HasRenderer reports whether documents come out as PDF
func (s *DocumentService) HasRenderer() bool {
	return s.renderer != nil
}

// InvoiceDocument renders the invoice with the given id
func (s *DocumentService) InvoiceDocument(ctx context.Context, id string) (*Document, error) {
	detail, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	inv := detail.Record

	html, err := s.engine.Render(infra.DocumentInvoice, s.view(inv))
	if err != nil {
		return nil, err
	}

	base := filename(inv)
	if s.renderer == nil {
		return &Document{
			Filename:    base + ".html",
			ContentType: ContentTypeHTML,
			Data:        []byte(html),
			PageCount:   1,
		}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "invoice.render", attribute.String("invoice.id", inv.ID))
	defer span.End()
	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:    html,
		Title:   "Invoice " + inv.Number,
		Paper:   s.paper,
		Margins: infra.DefaultMargins(),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("invoice render failed", zap.String("invoice_id", inv.ID), zap.Error(err))
		return nil, fmt.Errorf("render invoice %s: %w", inv.ID, err)
	}
	s.logger.Info("invoice rendered",
		zap.String("invoice_id", inv.ID),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))

	return &Document{
		Filename:    base + ".pdf",
		ContentType: ContentTypePDF,
		Data:        result.PDFData,
		PageCount:   result.PageCount,
	}, nil
}

func (s *DocumentService) view(inv finance.Invoice) invoiceView {
	v := invoiceView{
		Invoice:     inv,
		Brand:       fallbackBrand,
		GeneratedAt: s.now().UTC().Format("2006-01-02 15:04 MST"),
	}
	if resolved := brand.Resolve(inv.Brand); len(resolved) > 0 {
		v.Brand = resolved[0]
		if v.Brand.Color == "" {
			v.Brand.Color = fallbackBrand.Color
		}
	}
	for _, li := range inv.Items {
		v.Lines = append(v.Lines, lineView{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Total:       li.Total(),
		})
	}
	return v
}

func filename(inv finance.Invoice) string {
	name := inv.Number
	if name == "" {
		name = inv.ID
	}
	return "invoice-" + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
}
