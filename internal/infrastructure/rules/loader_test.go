package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRuleSetJSON(t *testing.T) {
	path := writeFile(t, "rules.json", `{
  "default_category": "A classer",
  "rules": [
    {"category": "Camera", "keywords": ["camera", "dome"], "regex": ["^CAM-"]},
    {"category": "Switch", "keywords": ["switch"]}
  ]
}`)

	set, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, "A classer", set.DefaultCategory)
	require.Len(t, set.Rules, 2)
	assert.Equal(t, []string{"^CAM-"}, set.Rules[0].Regex)
	assert.Equal(t, `2 rules, default "A classer"`, Describe(set))
}

func TestLoadRuleSetYAML(t *testing.T) {
	path := writeFile(t, "rules.yaml", `
rules:
  - category: Onduleur
    keywords: [onduleur, ups]
`)

	set, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultCategoryName, set.DefaultCategory)
	assert.Equal(t, []string{"onduleur", "ups"}, set.Rules[0].Keywords)
}

func TestLoadRuleSetInvalid(t *testing.T) {
	cases := map[string]string{
		"broken.json":  `{"rules": [`,
		"unknown.json": `{"rules": [{"category": "A", "keyword": ["a"]}]}`,
		"empty.json":   `{"default_category": "X", "rules": []}`,
		"broken.yml":   "rules: [category: {",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadRuleSet(writeFile(t, name, content))
			assert.ErrorIs(t, err, entity.ErrRuleFileInvalid)
		})
	}

	_, err := LoadRuleSet(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, entity.ErrRuleFileInvalid)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
