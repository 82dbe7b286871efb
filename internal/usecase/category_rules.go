package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/normalize"
)

type compiledRule struct {
	category string
	keywords []string
	patterns []*regexp.Regexp
}

// RuleEngine compiled category rules, evaluated in file order
type RuleEngine struct {
	defaultCategory string
	rules           []compiledRule
}

// CompileRules validates the whole rule set before anything is classified
func CompileRules(set entity.RuleSet) (*RuleEngine, error) {
	engine := &RuleEngine{defaultCategory: strings.TrimSpace(set.DefaultCategory)}
	if engine.defaultCategory == "" {
		engine.defaultCategory = entity.DefaultCategoryName
	}

	for i, rule := range set.Rules {
		category := strings.TrimSpace(rule.Category)
		if category == "" {
			return nil, &entity.RuleFileError{Reason: fmt.Sprintf("rule %d has no category", i+1)}
		}

		compiled := compiledRule{category: category}
		for _, kw := range rule.Keywords {
			if folded := normalize.Fold(kw); folded != "" {
				compiled.keywords = append(compiled.keywords, folded)
			}
		}
		for _, expr := range rule.Regex {
			if strings.TrimSpace(expr) == "" {
				continue
			}
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				return nil, &entity.RuleFileError{Reason: fmt.Sprintf("rule %q has an invalid regex", category), Err: err}
			}
			compiled.patterns = append(compiled.patterns, re)
		}
		if len(compiled.keywords) == 0 && len(compiled.patterns) == 0 {
			return nil, &entity.RuleFileError{Reason: fmt.Sprintf("rule %q has no keywords or regex", category)}
		}
		engine.rules = append(engine.rules, compiled)
	}
	return engine, nil
}

// DefaultCategory category used when no rule matches
func (e *RuleEngine) DefaultCategory() string {
	return e.defaultCategory
}

// Categories rule categories in order
func (e *RuleEngine) Categories() []string {
	out := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, r.category)
	}
	return out
}

// Classify returns the first matching rule's category, or the default and false
func (e *RuleEngine) Classify(p entity.Product) (string, bool) {
	sku := normalize.Fold(p.SKU)
	name := normalize.Fold(p.Name)
	for _, rule := range e.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(sku, kw) || strings.Contains(name, kw) {
				return rule.category, true
			}
		}
		for _, re := range rule.patterns {
			if re.MatchString(p.SKU) || re.MatchString(p.Name) {
				return rule.category, true
			}
		}
	}
	return e.defaultCategory, false
}

// categoryStopwords words too generic to identify a category
var categoryStopwords = map[string]bool{
	"accessoire": true, "accessoires": true, "autre": true, "autres": true,
	"divers": true, "produit": true, "produits": true, "pour": true, "avec": true,
	"materiel": true, "equipement": true, "equipements": true,
}

// DefaultRuleSet one rule per existing category: its name plus its distinctive words
func DefaultRuleSet(categories []string) entity.RuleSet {
	set := entity.RuleSet{DefaultCategory: entity.DefaultCategoryName}

	names := append([]string(nil), categories...)
	sort.Strings(names)
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		folded := normalize.Fold(name)
		if folded == "" || seen[folded] || IsUnclassified(name, set.DefaultCategory) {
			continue
		}
		seen[folded] = true

		keywords := []string{name}
		for _, token := range normalize.Tokens(name, 4) {
			if !categoryStopwords[token] && token != folded {
				keywords = append(keywords, token)
			}
		}
		set.Rules = append(set.Rules, entity.CategoryRule{Category: name, Keywords: keywords})
	}
	return set
}

var unclassifiedTokens = map[string]bool{
	"non classe": true, "non classee": true, "non classes": true, "uncategorized": true,
	"unclassified": true, "sans categorie": true, "a classer": true, "aucune": true, "none": true,
}

// IsUnclassified reports whether a category value means "no category"
func IsUnclassified(category, defaultCategory string) bool {
	folded := normalize.Fold(category)
	return folded == "" || folded == normalize.Fold(defaultCategory) || unclassifiedTokens[folded]
}
