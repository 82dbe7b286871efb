// Package rules loads category assignment rule files.
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"gopkg.in/yaml.v3"
)

// LoadRuleSet reads a JSON or YAML rule file, picked by extension.
// Errors wrap entity.ErrRuleFileInvalid; a missing file also wraps os.ErrNotExist.
func LoadRuleSet(path string) (*entity.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &entity.RuleFileError{Path: path, Reason: "cannot read", Err: err}
	}

	var set entity.RuleSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &set)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&set)
	}
	if err != nil {
		return nil, &entity.RuleFileError{Path: path, Reason: "cannot parse", Err: err}
	}

	if len(set.Rules) == 0 {
		return nil, &entity.RuleFileError{Path: path, Reason: "no rules"}
	}
	if strings.TrimSpace(set.DefaultCategory) == "" {
		set.DefaultCategory = entity.DefaultCategoryName
	}
	return &set, nil
}

// Describe one line summary for logs
func Describe(set *entity.RuleSet) string {
	return fmt.Sprintf("%d rules, default %q", len(set.Rules), set.DefaultCategory)
}
