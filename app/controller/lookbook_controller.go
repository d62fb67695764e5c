package controller

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"ekta-storefront/service"
)

// LookbookController serves the printable lookbook
type LookbookController struct {
	lookbook *service.LookbookService
}

// NewLookbookController creates a new LookbookController
func NewLookbookController(lookbook *service.LookbookService) *LookbookController {
	return &LookbookController{lookbook: lookbook}
}

// Lookbook handles GET /lookbook?category=all|men|women|baby&format=html|pdf
func (c *LookbookController) Lookbook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "Lookbook", r)
		return
	}

	category := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category")))
	if category == "" {
		category = "all"
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "html"
	}

	log.Printf("📥 Lookbook: category=%s, format=%s", category, format)

	switch format {
	case "html":
		html, err := c.lookbook.RenderHTML(r.Context(), category)
		if err != nil {
			log.Printf("❌ Lookbook: failed to render: %v", err)
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(html))

	case "pdf":
		pdf, err := c.lookbook.GeneratePDF(r.Context(), category)
		if err != nil {
			log.Printf("❌ Lookbook: failed to generate PDF: %v", err)
			writeServiceError(w, err)
			return
		}
		filename := fmt.Sprintf("ekta-lookbook-%s.pdf", category)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdf)))
		w.WriteHeader(http.StatusOK)
		w.Write(pdf)

	default:
		writeError(w, http.StatusBadRequest, "Invalid format. Valid formats: html, pdf")
	}
}
