package usecase

import (
	"fmt"
	"strings"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// productContext facts the model may rely on
func productContext(p entity.Product) string {
	var sb strings.Builder
	line := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", label, value))
		}
	}
	line("Nom", p.Name)
	line("SKU", p.SKU)
	line("Référence fabricant", p.ManufacturerReference)
	line("Marque", p.Brand)
	line("Catégorie", p.Category)
	if p.SalePrice.IsPositive() {
		line("Prix de vente", p.SalePrice.StringFixed(2))
	}
	line("Fiche technique (PDF)", p.DatasheetURL)
	line("Description courte actuelle", p.ShortDescription)
	line("Description longue actuelle", p.LongDescription)
	if len(p.TechSpecs) > 0 {
		specs := make([]string, 0, len(p.TechSpecs))
		for _, s := range p.TechSpecs {
			specs = append(specs, s.Label+": "+s.Value)
		}
		line("Caractéristiques connues", strings.Join(specs, "; "))
	}
	return sb.String()
}

func descriptionPrompt(p entity.Product) string {
	return fmt.Sprintf(`Rédige les descriptions e-commerce de ce produit.

Produit:
%s
Réponds uniquement en JSON:
{"short_description": "<accroche de 80 à 160 caractères>", "long_description": "<description de 450 à 900 caractères, paragraphes séparés par une ligne vide>"}`, productContext(p))
}

func techSheetPrompt(p entity.Product) string {
	return fmt.Sprintf(`Établis la fiche technique de ce produit à partir des informations connues et de la référence fabricant.

Produit:
%s
Donne entre 6 et 15 caractéristiques. N'ajoute aucune caractéristique dont tu n'es pas sûr.
Réponds uniquement en JSON strict:
{"specs": [{"label": "<caractéristique>", "value": "<valeur avec unité>"}]}`, productContext(p))
}

func blogPrompt(p entity.Product) string {
	return fmt.Sprintf(`Rédige un brouillon d'article de blog optimisé SEO présentant ce produit.

Produit:
%s
Structure: un titre, une introduction, trois sections avec intertitres (usages, points forts, conseils d'installation) et une conclusion.
Environ 500 mots, en texte brut avec les intertitres préfixés par "## ".`, productContext(p))
}

func categoryPrompt(p entity.Product, categories []string) string {
	return fmt.Sprintf(`Classe ce produit dans une des catégories suivantes:
%s

Produit:
%s
Réponds uniquement avec le nom exact de la catégorie, ou "aucune" si aucune ne convient.`, "- "+strings.Join(categories, "\n- "), productContext(p))
}
