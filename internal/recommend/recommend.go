package recommend

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/signals"
)

// recommendationNamespace scopes deterministic recommendation IDs
var recommendationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("spendsense/recommendation"))

// GenerateRecommendations selects education content and attaches a rationale to each item.
// It fails with ErrMissingCitation if any rationale cites no data.
func GenerateRecommendations(ctx context.Context, gen Generator, persona personas.Result, groups signals.Groups, catalog *models.Catalog, limit int) ([]Recommendation, error) {
	items, err := gen.GenerateEducation(ctx, persona, groups, catalog, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to generate education: %w", err)
	}

	recommendations := make([]Recommendation, 0, len(items))
	for _, item := range items {
		rationale, err := gen.GenerateRationale(ctx, item, persona, groups)
		if err != nil {
			return nil, fmt.Errorf("failed to generate rationale for %s: %w", item.Content.ID, err)
		}
		if len(rationale.Citations) == 0 {
			return nil, fmt.Errorf("%w: content %s", ErrMissingCitation, item.Content.ID)
		}

		recommendations = append(recommendations, Recommendation{
			ID:             RecommendationID(persona.Type, item.Content.ID),
			Content:        item.Content,
			RelevanceScore: item.RelevanceScore,
			Rationale:      rationale,
			PersonaType:    persona.Type,
			Confidence:     persona.Confidence,
		})
	}
	return recommendations, nil
}

// RecommendationID returns a stable ID for a persona and content pair
func RecommendationID(persona personas.PersonaType, contentID string) string {
	return "rec_" + uuid.NewSHA1(recommendationNamespace, []byte(string(persona)+"/"+contentID)).String()
}
