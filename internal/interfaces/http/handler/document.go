package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/agencyos/backend/internal/application/credential"
	"github.com/agencyos/backend/internal/application/printing"
	"github.com/gin-gonic/gin"
)

// InvoiceDocuments renders invoices
type InvoiceDocuments interface {
	InvoiceDocument(ctx context.Context, id string) (*printing.Document, error)
}

// SecretRevealer opens sealed credential secrets
type SecretRevealer interface {
	Reveal(ctx context.Context, id string) (*credential.Secret, error)
}

// Modules that carry documents. Routes are registered under /:module so
// they share the record routes' tree; other modules answer 404.
const (
	InvoiceModule    = "invoices"
	CredentialModule = "credentials"
)

// DocumentHandler serves rendered invoices and revealed secrets
type DocumentHandler struct {
	BaseHandler
	invoices InvoiceDocuments
	secrets  SecretRevealer
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(invoices InvoiceDocuments, secrets SecretRevealer) *DocumentHandler {
	return &DocumentHandler{invoices: invoices, secrets: secrets}
}

// Invoice returns the invoice as PDF, or HTML when no renderer is configured.
// ?download=1 asks the browser to save it.
func (h *DocumentHandler) Invoice(c *gin.Context) {
	if c.Param("module") != InvoiceModule {
		h.NotFound(c, "Module has no documents")
		return
	}
	doc, err := h.invoices.InvoiceDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	disposition := "inline"
	if download, _ := strconv.ParseBool(c.Query("download")); download {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+doc.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// Secret reveals a credential's secret. The response is never cached.
func (h *DocumentHandler) Secret(c *gin.Context) {
	if c.Param("module") != CredentialModule {
		h.NotFound(c, "Module has no secrets")
		return
	}
	if h.secrets == nil {
		h.Unavailable(c, "Credential vault is not configured")
		return
	}
	secret, err := h.secrets.Reveal(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	h.Success(c, secret)
}
