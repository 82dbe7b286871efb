package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Spec one line of a technical sheet
type Spec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// VideoLink link to a product video or a video search page
type VideoLink struct {
	Platform string `json:"platform"`
	Type     string `json:"type"`
	URL      string `json:"url"`
}

// Product catalogue item
type Product struct {
	ID                    int64
	SKU                   string
	ManufacturerReference string
	Barcode               string
	Name                  string
	Brand                 string
	Category              string
	PurchaseCost          decimal.Decimal
	SalePrice             decimal.Decimal
	ShortDescription      string
	LongDescription       string
	TechSpecs             []Spec
	DatasheetURL          string
	ImageRef              string
	ImageIsPlaceholder    bool
	Videos                []VideoLink
	BlogDraft             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// HasRealImage reports whether the product carries a validated, non placeholder image
func (p Product) HasRealImage() bool {
	return strings.TrimSpace(p.ImageRef) != "" && !p.ImageIsPlaceholder
}

// Label short identifier for logs and reports
func (p Product) Label() string {
	switch {
	case p.SKU != "":
		return p.SKU
	case p.ManufacturerReference != "":
		return p.ManufacturerReference
	default:
		return p.Name
	}
}

// MatchField product attribute used to match spreadsheet rows
type MatchField string

const (
	MatchManufacturerReference MatchField = "manufacturer_reference"
	MatchSKU                   MatchField = "sku"
	MatchName                  MatchField = "name"
)

// ParseMatchField validates a match field name
func ParseMatchField(raw string) (MatchField, error) {
	switch MatchField(strings.ToLower(strings.TrimSpace(raw))) {
	case MatchManufacturerReference, "":
		return MatchManufacturerReference, nil
	case MatchSKU:
		return MatchSKU, nil
	case MatchName:
		return MatchName, nil
	}
	return "", &InvalidArgumentError{Field: "match-field", Value: raw}
}

// Value returns the product attribute selected by the match field
func (f MatchField) Value(p Product) string {
	switch f {
	case MatchSKU:
		return p.SKU
	case MatchName:
		return p.Name
	default:
		return p.ManufacturerReference
	}
}
