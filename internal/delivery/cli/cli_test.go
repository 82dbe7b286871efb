package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/usecase"
)

func TestAssetOptionsRequest(t *testing.T) {
	req, err := assetOptions{limit: 5}.request()
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultAssets, req.Assets)
	assert.Empty(t, req.Force)
	assert.Equal(t, 5, req.Limit)

	req, err = assetOptions{assets: "description", forceBlog: true, forceDesc: true, inline: true}.request()
	require.NoError(t, err)
	assert.Equal(t, []entity.AssetType{entity.AssetDescription, entity.AssetBlog}, req.Assets, "forced assets are requested too")
	assert.Equal(t, map[entity.AssetType]bool{entity.AssetDescription: true, entity.AssetBlog: true}, req.Force)
	assert.True(t, req.Inline)

	_, err = assetOptions{assets: "description,podcast"}.request()
	var invalid *entity.InvalidArgumentError
	assert.ErrorAs(t, err, &invalid)
}

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{
		"update-product-costs", "import-customers", "product-asset-bot",
		"run-product-quality-agent", "auto-assign-categories", "worker",
	}, names)

	assets, _, err := root.Find([]string{"product-asset-bot"})
	require.NoError(t, err)
	for _, flag := range []string{"limit", "assets", "force-description", "force-image", "force-techsheet", "force-videos", "force-blog", "inline", "dry-run"} {
		assert.NotNil(t, assets.Flags().Lookup(flag), flag)
	}

	quality, _, err := root.Find([]string{"run-product-quality-agent"})
	require.NoError(t, err)
	assert.Equal(t, "70", quality.Flags().Lookup("threshold").DefValue)
}

func TestCommandRequiresFile(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"update-product-costs"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}

func isolatedEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "backoffice.db"))
	t.Setenv("TEXT_PROVIDER", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("REDIS_URL", "")
	return dir
}

func TestImportCustomersCommand(t *testing.T) {
	dir := isolatedEnv(t)
	file := filepath.Join(dir, "clients.csv")
	require.NoError(t, os.WriteFile(file, []byte("Nom;Téléphone;Email\nAwa Diop;77 123 45 67;AWA@example.sn\n;;orphan@example.sn\nMoussa Fall;;moussa@example.sn\n"), 0o644))

	run := func() string {
		var out bytes.Buffer
		root := NewRootCmd()
		root.SetArgs([]string{"import-customers", file})
		root.SetOut(&out)
		require.NoError(t, root.Execute())
		return out.String()
	}

	first := run()
	assert.Contains(t, first, "clients.csv")
	assert.Contains(t, first, "🆕 Créés: 2")
	assert.Contains(t, first, "➖ Ignorés: 1")

	second := run()
	assert.Contains(t, second, "🆕 Créés: 0")
	assert.Contains(t, second, "➖ Ignorés: 3")
}

func TestFormatCostSummary(t *testing.T) {
	text := formatCostSummary("/tmp/costs.xlsx", &usecase.CostUpdateSummary{Rows: 4, Updated: 2, NotFound: 1, InvalidCost: 1})
	assert.True(t, strings.HasPrefix(text, "💰 Mise à jour des coûts: costs.xlsx"))
	assert.Contains(t, text, "✅ Mis à jour: 2")
	assert.NotContains(t, text, "double")

	text = formatCostSummary("costs.xlsx", &usecase.CostUpdateSummary{Rows: 1, Updated: 1, Ambiguous: 1})
	assert.Contains(t, text, "👥 Références en double: 1")
}

func TestFormatBatchSummary(t *testing.T) {
	summary := &usecase.BatchSummary{
		Selected: 3,
		Queued:   1,
		Complete: 1,
		Failed:   1,
		Items: []usecase.BatchItem{
			{Product: entity.Product{ID: 1, SKU: "CAM-1", Name: "Dome Cam"}, Result: &entity.EnrichmentResult{
				State:  entity.StateComplete,
				Assets: []entity.AssetResult{{Asset: entity.AssetDescription, Status: entity.AssetGenerated}},
			}},
			{Product: entity.Product{ID: 2, Name: "Switch"}, JobID: "3f1c", Queued: true},
			{Product: entity.Product{ID: 3}, Err: errors.New("boom")},
		},
	}
	text := formatBatchSummary(summary)
	assert.Contains(t, text, "✅ #1 CAM-1 Dome Cam: description: generated")
	assert.Contains(t, text, "📨 #2 Switch (job 3f1c)")
	assert.Contains(t, text, "❌ #3: boom")
	assert.False(t, strings.HasSuffix(text, "\n"))

	dry := formatBatchSummary(&usecase.BatchSummary{DryRun: true, Selected: 1, Items: []usecase.BatchItem{{Product: entity.Product{ID: 9}}}})
	assert.Contains(t, dry, "🧪")
	assert.Contains(t, dry, "• #9")
	assert.NotContains(t, dry, "En file")
}

func TestFormatBatchSummaryTruncates(t *testing.T) {
	summary := &usecase.BatchSummary{DryRun: true}
	for i := 0; i < maxReportLines+5; i++ {
		summary.Items = append(summary.Items, usecase.BatchItem{Product: entity.Product{ID: int64(i + 1)}})
	}
	text := formatBatchSummary(summary)
	assert.Contains(t, text, "… 5 autres")
	assert.NotContains(t, text, "#31")
}

func TestFormatQualitySummary(t *testing.T) {
	summary := &usecase.QualitySummary{
		Threshold: 70,
		Checked:   3,
		OK:        1,
		Improved:  1,
		NoChange:  1,
		Items: []usecase.QualityItem{
			{Product: entity.Product{ID: 1}, Status: entity.QualityOK},
			{Product: entity.Product{ID: 2}, Status: entity.QualityImproved, Before: entity.QualityReport{Score: 40}, After: entity.QualityReport{Score: 85}},
			{Product: entity.Product{ID: 3}, Status: entity.QualityLowScoreNoChange,
				Before: entity.QualityReport{Score: 30},
				After: entity.QualityReport{Score: 30, Criteria: []entity.CriterionScore{
					{Criterion: entity.CriterionImage, Points: 0, Max: 20, Issue: "no image"},
				}}},
		},
	}
	text := formatQualitySummary(summary)
	assert.Contains(t, text, "(seuil 70)")
	assert.Contains(t, text, "📈 #2: 40 → 85")
	assert.Contains(t, text, "➖ #3: 30 → 30 (no image)")
	assert.NotContains(t, text, "#1")
}

func TestFormatCategorySummary(t *testing.T) {
	text := formatCategorySummary(&usecase.CategorySummary{
		Checked:  2,
		Assigned: 1,
		DryRun:   true,
		Items: []usecase.CategoryItem{
			{Product: entity.Product{ID: 1, Name: "Dome Cam 2MP"}, To: "Camera", Source: usecase.SourceRule, Changed: true},
			{Product: entity.Product{ID: 2, Name: "Router X1"}, From: "Non classe", To: "Non classe", Source: usecase.SourceDefault},
		},
	})
	assert.Contains(t, text, "🧪 Simulation catégories")
	assert.Contains(t, text, "• #1 Dome Cam 2MP: ∅ → Camera (rule)")
	assert.NotContains(t, text, "Router")
}
