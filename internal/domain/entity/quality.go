package entity

// Criterion quality rubric criterion
type Criterion string

const (
	CriterionTitle            Criterion = "title"
	CriterionShortDescription Criterion = "short_description"
	CriterionLongDescription  Criterion = "long_description"
	CriterionTechSheet        Criterion = "tech_sheet"
	CriterionImage            Criterion = "image"
	CriterionAncillary        Criterion = "ancillary"
)

// CriterionScore points earned on one criterion
type CriterionScore struct {
	Criterion Criterion
	Points    int
	Max       int
	Issue     string
}

// Full reports whether the criterion earned its maximum
func (c CriterionScore) Full() bool {
	return c.Points >= c.Max
}

// QualityReport derived quality score of a product
type QualityReport struct {
	ProductID int64
	Score     int
	Criteria  []CriterionScore
}

// Deficient criteria below full points
func (r QualityReport) Deficient() []Criterion {
	var out []Criterion
	for _, c := range r.Criteria {
		if !c.Full() {
			out = append(out, c.Criterion)
		}
	}
	return out
}

// Issues human readable problems
func (r QualityReport) Issues() []string {
	var out []string
	for _, c := range r.Criteria {
		if c.Issue != "" {
			out = append(out, c.Issue)
		}
	}
	return out
}

// QualityStatus outcome of the quality agent for one product
type QualityStatus string

const (
	QualityOK               QualityStatus = "ok"
	QualityImproved         QualityStatus = "improved"
	QualityLowScoreNoChange QualityStatus = "low_score_no_change"
	QualityError            QualityStatus = "error"
)
