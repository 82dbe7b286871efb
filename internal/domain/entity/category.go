package entity

// CategoryRule keyword and regex rule for one category
type CategoryRule struct {
	Category string   `json:"category" yaml:"category"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Regex    []string `json:"regex" yaml:"regex"`
}

// RuleSet ordered rules, first match wins
type RuleSet struct {
	DefaultCategory string         `json:"default_category" yaml:"default_category"`
	Rules           []CategoryRule `json:"rules" yaml:"rules"`
}

// DefaultCategoryName used when a rule file does not name one
const DefaultCategoryName = "Non classe"
