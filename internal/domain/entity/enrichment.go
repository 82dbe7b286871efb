package entity

import (
	"fmt"
	"strings"
)

// AssetType kind of generated product content
type AssetType string

const (
	AssetDescription AssetType = "description"
	AssetTechSheet   AssetType = "techsheet"
	AssetImages      AssetType = "images"
	AssetVideos      AssetType = "videos"
	AssetBlog        AssetType = "blog"
)

// AllAssets in pipeline order
var AllAssets = []AssetType{AssetDescription, AssetTechSheet, AssetBlog, AssetVideos, AssetImages}

// DefaultAssets requested when none are given
var DefaultAssets = []AssetType{AssetDescription, AssetImages}

// IsText reports whether the asset comes from the text generator
func (a AssetType) IsText() bool {
	return a == AssetDescription || a == AssetTechSheet || a == AssetBlog
}

// ParseAssetTypes parses a comma separated asset list ("description,images")
func ParseAssetTypes(raw string) ([]AssetType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return append([]AssetType(nil), DefaultAssets...), nil
	}
	seen := make(map[AssetType]bool)
	var out []AssetType
	for _, part := range strings.Split(raw, ",") {
		name := AssetType(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		switch name {
		case "image":
			name = AssetImages
		case "video":
			name = AssetVideos
		case "specs", "tech_sheet":
			name = AssetTechSheet
		}
		valid := false
		for _, a := range AllAssets {
			if a == name {
				valid = true
				break
			}
		}
		if !valid {
			return nil, &InvalidArgumentError{Field: "assets", Value: part}
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

// PipelineState enrichment run state
type PipelineState string

const (
	StatePending         PipelineState = "PENDING"
	StateTextGenerating  PipelineState = "TEXT_GENERATING"
	StateImageSearching  PipelineState = "IMAGE_SEARCHING"
	StateImageValidating PipelineState = "IMAGE_VALIDATING"
	StateComplete        PipelineState = "COMPLETE"
	StatePartialFailure  PipelineState = "PARTIAL_FAILURE"
)

// AssetStatus per asset outcome
type AssetStatus string

const (
	AssetGenerated AssetStatus = "generated"
	AssetSkipped   AssetStatus = "skipped"
	AssetNotFound  AssetStatus = "not_found"
	AssetFailed    AssetStatus = "failed"
)

// AssetResult outcome of one asset
type AssetResult struct {
	Asset   AssetType
	Status  AssetStatus
	Message string
}

func (r AssetResult) String() string {
	if r.Message == "" {
		return fmt.Sprintf("%s: %s", r.Asset, r.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", r.Asset, r.Status, r.Message)
}

// EnrichmentRequest assets to produce and which of them to regenerate
type EnrichmentRequest struct {
	Assets []AssetType
	Force  map[AssetType]bool
}

// Wants reports whether the asset was requested
func (r EnrichmentRequest) Wants(asset AssetType) bool {
	for _, a := range r.Assets {
		if a == asset {
			return true
		}
	}
	return false
}

// Forced reports whether the asset must be regenerated
func (r EnrichmentRequest) Forced(asset AssetType) bool {
	return r.Force[asset]
}

// EnrichmentResult outcome of one pipeline run
type EnrichmentResult struct {
	ProductID int64
	State     PipelineState
	States    []PipelineState
	Assets    []AssetResult
	Product   Product
	Changed   bool
}

// Result returns the outcome of one asset
func (r *EnrichmentResult) Result(asset AssetType) (AssetResult, bool) {
	for _, a := range r.Assets {
		if a.Asset == asset {
			return a, true
		}
	}
	return AssetResult{}, false
}

// Count number of assets with the given status
func (r *EnrichmentResult) Count(status AssetStatus) int {
	n := 0
	for _, a := range r.Assets {
		if a.Status == status {
			n++
		}
	}
	return n
}

// ImageCandidate search hit
type ImageCandidate struct {
	URL      string
	Provider string
	Query    string
}

// ImageData downloaded image
type ImageData struct {
	URL         string
	ContentType string
	Bytes       []byte
	Placeholder bool
}

// ImageAnalysis vision model verdict on an image
type ImageAnalysis struct {
	Text       string  `json:"text"`
	Matches    bool    `json:"matches"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}
