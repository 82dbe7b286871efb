package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/usecase"
)

// maxReportLines per-product lines listed in one report
const maxReportLines = 30

func productLabel(p entity.Product) string {
	label := fmt.Sprintf("#%d", p.ID)
	if p.SKU != "" {
		label += " " + p.SKU
	}
	if p.Name != "" {
		label += " " + p.Name
	}
	return label
}

func formatCostSummary(file string, s *usecase.CostUpdateSummary) string {
	text := fmt.Sprintf(`💰 Mise à jour des coûts: %s
📄 Lignes: %d
✅ Mis à jour: %d
➖ Inchangés: %d
🔍 Introuvables: %d
⚠️ Sans référence: %d
⚠️ Coût invalide: %d
❌ Échecs: %d`,
		filepath.Base(file), s.Rows, s.Updated, s.Unchanged, s.NotFound, s.MissingReference, s.InvalidCost, s.Failed)
	if s.Ambiguous > 0 {
		text += fmt.Sprintf("\n👥 Références en double: %d (produit au plus petit ID mis à jour)", s.Ambiguous)
	}
	return text
}

func formatCustomerSummary(file string, s *usecase.CustomerImportSummary) string {
	return fmt.Sprintf(`👤 Import clients: %s
📄 Lignes: %d
🆕 Créés: %d
🔄 Mis à jour: %d
➖ Ignorés: %d
❌ Échecs: %d`,
		filepath.Base(file), s.Rows, s.Created, s.Updated, s.Skipped, s.Failed)
}

func formatBatchSummary(s *usecase.BatchSummary) string {
	var sb strings.Builder
	if s.DryRun {
		sb.WriteString("🧪 Simulation product-asset-bot\n")
	} else {
		sb.WriteString("🤖 product-asset-bot\n")
	}
	sb.WriteString(fmt.Sprintf("📦 Sélectionnés: %d\n⏳ Déjà en cours: %d\n", s.Selected, s.SkippedActive))
	if !s.DryRun {
		sb.WriteString(fmt.Sprintf("📨 En file: %d\n✅ Complets: %d\n⚠️ Partiels: %d\n❌ Échecs: %d\n",
			s.Queued, s.Complete, s.Partial, s.Failed))
	}

	for i, item := range s.Items {
		if i == maxReportLines {
			sb.WriteString(fmt.Sprintf("… %d autres\n", len(s.Items)-i))
			break
		}
		sb.WriteString(batchItemLine(item))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func batchItemLine(item usecase.BatchItem) string {
	label := productLabel(item.Product)
	switch {
	case item.Err != nil:
		return fmt.Sprintf("❌ %s: %v", label, item.Err)
	case item.Queued:
		return fmt.Sprintf("📨 %s (job %s)", label, item.JobID)
	case item.Result == nil:
		return "• " + label
	}

	parts := make([]string, 0, len(item.Result.Assets))
	for _, r := range item.Result.Assets {
		parts = append(parts, r.String())
	}
	icon := "✅"
	if item.Result.State == entity.StatePartialFailure {
		icon = "⚠️"
	}
	return fmt.Sprintf("%s %s: %s", icon, label, strings.Join(parts, ", "))
}

func formatQualitySummary(s *usecase.QualitySummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`📊 Agent qualité (seuil %d)
🔎 Vérifiés: %d
✅ OK: %d
📈 Améliorés: %d
➖ Sans amélioration: %d
❌ Erreurs: %d
`, s.Threshold, s.Checked, s.OK, s.Improved, s.NoChange, s.Errors))

	lines := 0
	for _, item := range s.Items {
		if item.Status == entity.QualityOK {
			continue
		}
		if lines == maxReportLines {
			sb.WriteString("…\n")
			break
		}
		lines++
		sb.WriteString(qualityItemLine(item))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func qualityItemLine(item usecase.QualityItem) string {
	label := productLabel(item.Product)
	switch item.Status {
	case entity.QualityError:
		return fmt.Sprintf("❌ %s: %v", label, item.Err)
	case entity.QualityImproved:
		return fmt.Sprintf("📈 %s: %d → %d", label, item.Before.Score, item.After.Score)
	}

	var issues []string
	for _, c := range item.After.Criteria {
		if !c.Full() && c.Issue != "" {
			issues = append(issues, c.Issue)
		}
	}
	line := fmt.Sprintf("➖ %s: %d → %d", label, item.Before.Score, item.After.Score)
	if len(issues) > 0 {
		line += " (" + strings.Join(issues, "; ") + ")"
	}
	return line
}

func formatCategorySummary(s *usecase.CategorySummary) string {
	var sb strings.Builder
	if s.DryRun {
		sb.WriteString("🧪 Simulation catégories\n")
	} else {
		sb.WriteString("🗂 Catégories\n")
	}
	sb.WriteString(fmt.Sprintf(`🔎 Vérifiés: %d
✅ Assignés: %d
📁 Catégorie par défaut: %d
➖ Inchangés: %d
❌ Échecs: %d
`, s.Checked, s.Assigned, s.Defaulted, s.Unchanged, s.Failed))

	lines := 0
	for _, item := range s.Items {
		if !item.Changed && item.Err == nil {
			continue
		}
		if lines == maxReportLines {
			sb.WriteString("…\n")
			break
		}
		lines++
		if item.Err != nil {
			sb.WriteString(fmt.Sprintf("❌ %s: %v\n", productLabel(item.Product), item.Err))
			continue
		}
		from := item.From
		if from == "" {
			from = "∅"
		}
		sb.WriteString(fmt.Sprintf("• %s: %s → %s (%s)\n", productLabel(item.Product), from, item.To, item.Source))
	}
	return strings.TrimRight(sb.String(), "\n")
}
