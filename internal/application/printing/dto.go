package printing

import (
	"github.com/agencyos/backend/internal/domain/brand"
	"github.com/agencyos/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// Content types of rendered documents
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Document is a rendered invoice ready to send
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	PageCount   int
}

// invoiceView is what templates/invoice.html reads
type invoiceView struct {
	Invoice     finance.Invoice
	Brand       brand.Brand
	Lines       []lineView
	GeneratedAt string
}

type lineView struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// fallbackBrand heads invoices with no brand
var fallbackBrand = brand.Brand{ID: "", Name: "Agency", Color: "#111827"}
