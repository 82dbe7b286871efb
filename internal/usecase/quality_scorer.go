package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/normalize"
)

// rubric maxima, total 100
const (
	titlePoints     = 15
	shortPoints     = 15
	longPoints      = 30
	specPoints      = 15
	imagePoints     = 15
	ancillaryPoints = 10
)

var placeholderTitles = map[string]bool{
	"produit": true, "product": true, "sans nom": true, "nouveau produit": true,
	"n a": true, "na": true, "test": true, "tbd": true, "xxx": true,
}

// ScoreProduct fixed-weight quality score; adding an asset never lowers it
func ScoreProduct(p entity.Product) entity.QualityReport {
	report := entity.QualityReport{ProductID: p.ID}
	add := func(c entity.CriterionScore) {
		report.Criteria = append(report.Criteria, c)
		report.Score += c.Points
	}

	add(scoreTitle(p))
	add(scoreShort(p.ShortDescription))
	add(scoreLong(p.LongDescription))
	add(scoreSpecs(len(p.TechSpecs)))
	add(scoreImage(p))
	add(scoreAncillary(p))
	return report
}

func scoreTitle(p entity.Product) entity.CriterionScore {
	c := entity.CriterionScore{Criterion: entity.CriterionTitle, Max: titlePoints}
	title := normalize.Fold(p.Name)
	switch {
	case title == "":
		c.Issue = "missing title"
	case placeholderTitles[title] || (p.SKU != "" && title == normalize.Fold(p.SKU)):
		c.Issue = "placeholder title"
	default:
		c.Points = titlePoints
	}
	return c
}

func scoreShort(text string) entity.CriterionScore {
	c := entity.CriterionScore{Criterion: entity.CriterionShortDescription, Max: shortPoints}
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n >= 60:
		c.Points = shortPoints
	case n > 0:
		c.Points = 7
		c.Issue = fmt.Sprintf("short description too short (%d chars)", n)
	default:
		c.Issue = "missing short description"
	}
	return c
}

func scoreLong(text string) entity.CriterionScore {
	c := entity.CriterionScore{Criterion: entity.CriterionLongDescription, Max: longPoints}
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n >= 450:
		c.Points = longPoints
	case n >= 200:
		c.Points = 18
		c.Issue = fmt.Sprintf("long description below 450 chars (%d)", n)
	case n > 0:
		c.Points = 9
		c.Issue = fmt.Sprintf("long description too short (%d chars)", n)
	default:
		c.Issue = "missing long description"
	}
	return c
}

func scoreSpecs(n int) entity.CriterionScore {
	c := entity.CriterionScore{Criterion: entity.CriterionTechSheet, Max: specPoints}
	switch {
	case n >= 8:
		c.Points = specPoints
	case n >= 4:
		c.Points = 9
	case n >= 1:
		c.Points = 5
	}
	switch {
	case n == 0:
		c.Issue = "missing technical sheet"
	case n < 8:
		c.Issue = fmt.Sprintf("technical sheet has %d specs", n)
	}
	return c
}

func scoreImage(p entity.Product) entity.CriterionScore {
	c := entity.CriterionScore{Criterion: entity.CriterionImage, Max: imagePoints}
	switch {
	case p.HasRealImage():
		c.Points = imagePoints
	case strings.TrimSpace(p.ImageRef) != "":
		c.Points = 7
		c.Issue = "placeholder image"
	default:
		c.Issue = "missing image"
	}
	return c
}

func scoreAncillary(p entity.Product) entity.CriterionScore {
	c := entity.CriterionScore{Criterion: entity.CriterionAncillary, Max: ancillaryPoints}
	var missing []string
	if strings.TrimSpace(p.DatasheetURL) != "" {
		c.Points += 4
	} else {
		missing = append(missing, "datasheet")
	}
	if len(p.Videos) > 0 {
		c.Points += 3
	} else {
		missing = append(missing, "videos")
	}
	if strings.TrimSpace(p.BlogDraft) != "" {
		c.Points += 3
	} else {
		missing = append(missing, "blog draft")
	}
	if len(missing) > 0 {
		c.Issue = "missing " + strings.Join(missing, ", ")
	}
	return c
}
