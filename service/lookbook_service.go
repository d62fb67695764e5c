package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"os"
	"strings"
	"time"

	"ekta-storefront/models"
	"ekta-storefront/utils"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const lookbookItemsPerPage = 6

// LookbookItem is one product card of the printable lookbook
type LookbookItem struct {
	models.Product
	Price         string
	OriginalPrice string
	ImageURI      template.URL
}

// LookbookPage is one printed page of product cards
type LookbookPage struct {
	Number int
	Items  []LookbookItem
}

// LookbookService renders the product catalog as a printable lookbook
type LookbookService struct {
	catalog    *CatalogService
	images     *ImageService
	tmpl       *template.Template
	chromePath string
}

// detectChromePath returns configured if it exists, otherwise the first common
// Chrome/Chromium install path found. Empty lets chromedp search $PATH.
func detectChromePath(configured string) string {
	paths := []string{
		configured,
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// NewLookbookService parses the lookbook template
func NewLookbookService(catalog *CatalogService, images *ImageService, templateText, chromePath string) (*LookbookService, error) {
	tmpl, err := template.New("lookbook").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(templateText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &LookbookService{
		catalog:    catalog,
		images:     images,
		tmpl:       tmpl,
		chromePath: detectChromePath(chromePath),
	}, nil
}

// paginate splits items into pages of lookbookItemsPerPage
func paginate(items []LookbookItem) []LookbookPage {
	var pages []LookbookPage
	for i := 0; i < len(items); i += lookbookItemsPerPage {
		end := i + lookbookItemsPerPage
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, LookbookPage{Number: len(pages) + 1, Items: items[i:end]})
	}
	return pages
}

func lookbookTitle(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == models.CategoryAll {
		return "Lookbook"
	}
	return cases.Title(language.English).String(category) + " Lookbook"
}

func (s *LookbookService) item(ctx context.Context, p models.Product) LookbookItem {
	item := LookbookItem{Product: p, Price: utils.FormatTaka(p.Price)}
	if p.OriginalPrice != nil {
		item.OriginalPrice = utils.FormatTaka(*p.OriginalPrice)
	}
	if len(p.Images) == 0 {
		return item
	}
	thumb, err := s.images.ProductImage(ctx, p.ID, 0, ImageSizeThumb)
	if err != nil {
		log.Printf("⚠️  Warning: Failed to load image for product %s: %v", p.ID, err)
		return item
	}
	item.ImageURI = template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(thumb))
	return item
}

// RenderHTML renders the lookbook of category ("" or "all" for every product).
// Images are inlined as base64 so the page has no external requests.
func (s *LookbookService) RenderHTML(ctx context.Context, category string) (string, error) {
	products, err := s.catalog.ByCategory(category)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "", fmt.Errorf("%w: no products in category %s", ErrProductNotFound, category)
	}

	items := make([]LookbookItem, 0, len(products))
	for _, p := range products {
		items = append(items, s.item(ctx, p))
	}
	pages := paginate(items)

	templateData := struct {
		Title     string
		PageCount int
		Pages     []LookbookPage
	}{
		Title:     lookbookTitle(category),
		PageCount: len(pages),
		Pages:     pages,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, templateData); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GeneratePDF prints the rendered lookbook to an A4 PDF with headless Chrome
func (s *LookbookService) GeneratePDF(ctx context.Context, category string) ([]byte, error) {
	html, err := s.RenderHTML(ctx, category)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)
	if s.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var pdfBuf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 8.27" x 11.69", margins are in the page CSS
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	log.Printf("✓ Lookbook PDF generated: category=%s, %d bytes", category, len(pdfBuf))
	return pdfBuf, nil
}
