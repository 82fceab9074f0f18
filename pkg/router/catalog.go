package router

import (
	"github.com/bluelilygithub/curam-ai-gateway/pkg/config"
)

// CostTier grades a model's relative cost.
type CostTier string

const (
	CostVeryLow CostTier = "very_low"
	CostLow     CostTier = "low"
	CostMedium  CostTier = "medium"
	CostHigh    CostTier = "high"
)

// SpeedTier grades a model's relative latency.
type SpeedTier string

const (
	SpeedFast   SpeedTier = "fast"
	SpeedMedium SpeedTier = "medium"
	SpeedSlow   SpeedTier = "slow"
)

// ModelDescriptor describes one entry of the static model catalog.
// Descriptors are read-only: a scoring pass derives (descriptor, score)
// pairs and never writes back.
type ModelDescriptor struct {
	ID              string       `json:"id"`
	DisplayName     string       `json:"display_name"`
	Provider        string       `json:"provider"`
	Characteristics []Capability `json:"characteristics"`
	CostTier        CostTier     `json:"cost_tier"`
	SpeedTier       SpeedTier    `json:"speed_tier"`
}

// Has reports whether the descriptor carries the given capability tag.
func (d ModelDescriptor) Has(c Capability) bool {
	for _, tag := range d.Characteristics {
		if tag == c {
			return true
		}
	}
	return false
}

// CatalogFromConfig compiles config entries into descriptors, preserving
// order: position in the catalog is the selector's tie-break.
func CatalogFromConfig(cfg *config.CatalogConfig) []ModelDescriptor {
	if cfg == nil {
		return nil
	}
	catalog := make([]ModelDescriptor, 0, len(cfg.Models))
	for _, entry := range cfg.Models {
		tags := make([]Capability, 0, len(entry.Characteristics))
		for _, c := range entry.Characteristics {
			tags = append(tags, Capability(c))
		}
		catalog = append(catalog, ModelDescriptor{
			ID:              entry.ID,
			DisplayName:     entry.Name,
			Provider:        entry.Provider,
			Characteristics: tags,
			CostTier:        CostTier(entry.CostTier),
			SpeedTier:       SpeedTier(entry.SpeedTier),
		})
	}
	return catalog
}

// DefaultCatalog returns the compiled built-in catalog.
func DefaultCatalog() []ModelDescriptor {
	return CatalogFromConfig(config.DefaultCatalogConfig())
}
