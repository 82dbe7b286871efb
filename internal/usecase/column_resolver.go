package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/normalize"
)

// Field logical spreadsheet column
type Field string

const (
	FieldReference   Field = "reference"
	FieldCost        Field = "cost"
	FieldName        Field = "name"
	FieldCompany     Field = "company"
	FieldPhone       Field = "phone"
	FieldEmail       Field = "email"
	FieldSalesperson Field = "salesperson"
	FieldActivity    Field = "activity"
	FieldCity        Field = "city"
	FieldCountry     Field = "country"
)

// Synonyms header synonyms per field, highest priority first
var Synonyms = map[Field][]string{
	FieldReference:   {"reference interne", "reference fabricant", "reference", "ref", "sku", "code"},
	FieldCost:        {"cout", "purchase price", "prix achat", "prix d achat", "prix de revient", "cost", "prix"},
	FieldName:        {"nom complet", "nom", "name", "client"},
	FieldCompany:     {"societe", "entreprise", "company", "raison sociale"},
	FieldPhone:       {"telephone", "tel", "phone", "mobile", "portable"},
	FieldEmail:       {"email", "e mail", "mail", "courriel"},
	FieldSalesperson: {"vendeur", "commercial", "salesperson"},
	FieldActivity:    {"activite", "activites", "activity", "secteur"},
	FieldCity:        {"ville", "city"},
	FieldCountry:     {"pays", "country"},
}

// ColumnSpec one logical field to resolve
type ColumnSpec struct {
	Field    Field
	Required bool
	// Override exact header, 1-based index, column letter or header substring
	Override string
}

// ResolveColumns maps logical fields to column indexes.
// A synonym hitting several columns is ambiguous; exact header matches win over substrings.
// Optional fields that are missing or ambiguous are left out of the result.
func ResolveColumns(header []string, specs []ColumnSpec) (map[Field]int, error) {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = normalize.Fold(h)
	}

	resolved := make(map[Field]int, len(specs))
	overridden := make(map[Field]bool)
	for _, spec := range specs {
		if spec.Override != "" {
			idx, err := resolveOverride(header, folded, spec)
			if err != nil {
				return nil, err
			}
			resolved[spec.Field] = idx
			overridden[spec.Field] = true
			continue
		}

		idx, err := resolveBySynonyms(header, folded, spec.Field)
		if err != nil {
			if spec.Required {
				return nil, err
			}
			continue
		}
		if idx < 0 {
			if spec.Required {
				return nil, &entity.ColumnError{Field: string(spec.Field)}
			}
			continue
		}
		resolved[spec.Field] = idx
	}

	// one column per field
	for i, a := range specs {
		for _, b := range specs[i+1:] {
			ia, okA := resolved[a.Field]
			ib, okB := resolved[b.Field]
			if !okA || !okB || ia != ib {
				continue
			}
			switch {
			case a.Required && b.Required:
				return nil, &entity.ColumnError{
					Field:      fmt.Sprintf("%s/%s", a.Field, b.Field),
					Candidates: []string{header[ia]},
					Ambiguous:  true,
				}
			case !b.Required && !overridden[b.Field]:
				delete(resolved, b.Field)
			case !a.Required && !overridden[a.Field]:
				delete(resolved, a.Field)
			}
		}
	}

	return resolved, nil
}

// resolveBySynonyms returns -1 when no synonym matches
func resolveBySynonyms(header, folded []string, field Field) (int, error) {
	for _, synonym := range Synonyms[field] {
		syn := normalize.Fold(synonym)

		if hits := matchColumns(folded, func(h string) bool { return h == syn }); len(hits) == 1 {
			return hits[0], nil
		} else if len(hits) > 1 {
			return -1, ambiguous(field, header, hits)
		}

		hits := matchColumns(folded, func(h string) bool { return containsWord(h, syn) })
		switch {
		case len(hits) == 1:
			return hits[0], nil
		case len(hits) > 1:
			return -1, ambiguous(field, header, hits)
		}
	}
	return -1, nil
}

func resolveOverride(header, folded []string, spec ColumnSpec) (int, error) {
	raw := strings.TrimSpace(spec.Override)
	notFound := &entity.ColumnError{Field: string(spec.Field), Override: raw}

	want := normalize.Fold(raw)
	if hits := matchColumns(folded, func(h string) bool { return h == want }); len(hits) == 1 {
		return hits[0], nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n >= 1 && n <= len(header) {
			return n - 1, nil
		}
		return -1, notFound
	}

	if isColumnLetters(raw) {
		if n, err := excelize.ColumnNameToNumber(strings.ToUpper(raw)); err == nil && n <= len(header) {
			return n - 1, nil
		}
	}

	if want != "" {
		hits := matchColumns(folded, func(h string) bool { return strings.Contains(h, want) })
		switch {
		case len(hits) == 1:
			return hits[0], nil
		case len(hits) > 1:
			return -1, ambiguous(spec.Field, header, hits)
		}
	}
	return -1, notFound
}

func matchColumns(folded []string, pred func(string) bool) []int {
	var hits []int
	for i, h := range folded {
		if h != "" && pred(h) {
			hits = append(hits, i)
		}
	}
	return hits
}

// containsWord substring match starting on a word ("tel" matches "num telephone", not "hotel")
func containsWord(h, syn string) bool {
	if syn == "" {
		return false
	}
	return strings.Contains(" "+h, " "+syn)
}

func isColumnLetters(s string) bool {
	if s == "" || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func ambiguous(field Field, header []string, hits []int) error {
	candidates := make([]string, 0, len(hits))
	for _, i := range hits {
		candidates = append(candidates, header[i])
	}
	return &entity.ColumnError{Field: string(field), Candidates: candidates, Ambiguous: true}
}
