package imagesearch

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// URLTemplate builds an image URL from a template such as
// "https://cdn.example.com/img/{reference}.jpg"; used after every search came back empty.
// Known placeholders: name, sku, reference, manufacturer_reference, barcode,
// brand, category, product_id and query. Unknown ones are left empty.
type URLTemplate struct {
	template string
}

// NewURLTemplate empty template disables the fallback
func NewURLTemplate(template string) *URLTemplate {
	return &URLTemplate{template: strings.TrimSpace(template)}
}

// Enabled when a template is configured
func (t *URLTemplate) Enabled() bool {
	return t.template != ""
}

// URLFor substitutes the escaped product fields
func (t *URLTemplate) URLFor(p entity.Product, query string) string {
	if !t.Enabled() {
		return ""
	}

	reference := firstNonEmpty(p.ManufacturerReference, p.SKU, p.Barcode)
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "produit"
	}
	productID := ""
	if p.ID > 0 {
		productID = strconv.FormatInt(p.ID, 10)
	}
	values := map[string]string{
		"name":                   url.QueryEscape(name),
		"sku":                    url.QueryEscape(strings.TrimSpace(p.SKU)),
		"reference":              url.QueryEscape(reference),
		"manufacturer_reference": url.QueryEscape(strings.TrimSpace(p.ManufacturerReference)),
		"barcode":                url.QueryEscape(strings.TrimSpace(p.Barcode)),
		"brand":                  url.QueryEscape(strings.TrimSpace(p.Brand)),
		"category":               url.QueryEscape(strings.TrimSpace(p.Category)),
		"product_id":             productID,
		"query":                  url.QueryEscape(strings.TrimSpace(query)),
	}

	return placeholderPattern.ReplaceAllStringFunc(t.template, func(m string) string {
		return values[m[1:len(m)-1]]
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
