// Package recommend selects catalog content for a persona and explains each selection with cited signal data.
package recommend

import (
	"context"
	"encoding/gob"
	"errors"

	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/signals"
)

func init() {
	gob.Register(Recommendation{})
	gob.Register(OfferRecommendation{})
	gob.Register(Rationale{})
}

// DefaultLimit is the number of education items returned when no limit is given
const DefaultLimit = 3

// ErrMissingCitation is returned when a rationale cites no signal data
var ErrMissingCitation = errors.New("rationale has no data citations")

// Generator produces education selections and rationales.
// Implementations are injected per call; the template generator is the reference implementation.
type Generator interface {
	GenerateEducation(ctx context.Context, persona personas.Result, groups signals.Groups, catalog *models.Catalog, limit int) ([]EducationItem, error)
	GenerateRationale(ctx context.Context, item EducationItem, persona personas.Result, groups signals.Groups) (Rationale, error)
}

// EducationItem is a catalog item selected for a persona
type EducationItem struct {
	Content        models.ContentItem `json:"content"`
	MatchedTags    []string           `json:"matched_tags"`    // Item signal tags that are currently active
	Score          int                `json:"score"`
	RelevanceScore int                `json:"relevance_score"` // 1-5
}

// Rationale explains why an item was recommended, backed by data citations
type Rationale struct {
	PersonaType personas.PersonaType `json:"persona_type"`
	Confidence  float64              `json:"confidence"`
	Explanation string               `json:"explanation"`
	Citations   []signals.DataPoint  `json:"citations"`
	KeySignals  []string             `json:"key_signals"`
}

// Recommendation pairs an education item with its rationale
type Recommendation struct {
	ID             string               `json:"id"`
	Content        models.ContentItem   `json:"content"`
	RelevanceScore int                  `json:"relevance_score"`
	Rationale      Rationale            `json:"rationale"`
	PersonaType    personas.PersonaType `json:"persona_type"`
	Confidence     float64              `json:"confidence"`
}

// OfferRecommendation is an eligible partner offer with its rationale
type OfferRecommendation struct {
	ID             string               `json:"id"`
	Offer          models.PartnerOffer  `json:"offer"`
	RelevanceScore int                  `json:"relevance_score"`
	Rationale      Rationale            `json:"rationale"`
	PersonaType    personas.PersonaType `json:"persona_type"`
	Confidence     float64              `json:"confidence"`
}
