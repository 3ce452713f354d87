// Package printing turns documents into PDF: html/template builds the page and
// headless Chrome prints it.
package printing

import (
	"context"
	"time"
)

// Paper is a sheet size
type Paper string

const (
	PaperA4     Paper = "A4"
	PaperLetter Paper = "LETTER"
)

// IsValid reports whether p is a known size
func (p Paper) IsValid() bool {
	return p == PaperA4 || p == PaperLetter
}

// Dimensions returns width and height in millimetres
func (p Paper) Dimensions() (width, height float64) {
	if p == PaperLetter {
		return 215.9, 279.4
	}
	return 210, 297
}

// Margins in millimetres
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins returns 15mm all round
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 15, Bottom: 15, Left: 15}
}

// RenderRequest is one HTML page to print
type RenderRequest struct {
	HTML      string
	Title     string
	Paper     Paper
	Landscape bool
	Margins   Margins
	// FooterHTML is printed on every page when set
	FooterHTML string
	Timeout    time.Duration
}

// RenderResult is the printed document
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer prints HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError is a failed render or template execution
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeTemplateFailed   = "TEMPLATE_FAILED"
)

// NewRenderError creates a RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
