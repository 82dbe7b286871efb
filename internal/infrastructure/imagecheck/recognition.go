package imagecheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
	"github.com/yourusername/stock-backoffice/internal/normalize"
)

// RecognitionValidator asks a vision model to read the image and checks it against the product
type RecognitionValidator struct {
	Analyzer      repository.VisionAnalyzer
	MinConfidence float64
}

// Name check name
func (v RecognitionValidator) Name() string {
	return "recognition"
}

// Validate accepts the image when a product token appears in the extracted text,
// or when the model says it matches with enough confidence
func (v RecognitionValidator) Validate(ctx context.Context, product entity.Product, img *entity.ImageData) error {
	analysis, err := v.Analyzer.AnalyzeImage(ctx, img, recognitionPrompt(product))
	if err != nil {
		return err
	}

	folded := " " + normalize.Fold(analysis.Text) + " "
	for _, token := range ProductTokens(product) {
		if strings.Contains(folded, " "+token+" ") {
			return nil
		}
	}

	if analysis.Matches && analysis.Confidence >= v.MinConfidence {
		return nil
	}

	reason := fmt.Sprintf("no product token in image text, model verdict %t (%.2f)", analysis.Matches, analysis.Confidence)
	if analysis.Reason != "" {
		reason += ": " + analysis.Reason
	}
	return &entity.ImageRejectedError{Check: v.Name(), Reason: reason}
}

// ProductTokens folded identifiers expected on packaging or the device itself
func ProductTokens(p entity.Product) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s = normalize.Fold(s); len(s) >= 3 && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(p.ManufacturerReference)
	add(p.SKU)
	add(p.Brand)
	for _, word := range normalize.Tokens(p.Name, 4) {
		if !stopwords[word] {
			add(word)
		}
	}
	return out
}

var stopwords = map[string]bool{
	"avec": true, "pour": true, "sans": true, "noir": true, "blanc": true,
	"with": true, "black": true, "white": true, "pack": true,
}

func recognitionPrompt(p entity.Product) string {
	var b strings.Builder
	b.WriteString("Analyse cette image de produit.\n")
	fmt.Fprintf(&b, "Produit attendu: %s\n", p.Name)
	if p.Brand != "" {
		fmt.Fprintf(&b, "Marque: %s\n", p.Brand)
	}
	if p.ManufacturerReference != "" {
		fmt.Fprintf(&b, "Référence fabricant: %s\n", p.ManufacturerReference)
	}
	b.WriteString(`Réponds uniquement en JSON: {"text": "<tout le texte lisible>", "matches": <true si l'image montre ce produit>, "confidence": <0 à 1>, "reason": "<courte justification>"}`)
	return b.String()
}
