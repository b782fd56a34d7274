// Package engine runs the full pipeline: signals, persona assignment, then recommendations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/guardrails"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/recommend"
	"github.com/ternarybob/spendsense/internal/signals"
)

var (
	// ErrMissingCatalog is returned when Generate runs without a catalog
	ErrMissingCatalog = errors.New("content catalog is required")
	// ErrToneViolation is returned when generated text fails the tone check
	ErrToneViolation = errors.New("recommendation failed tone check")
)

// ToneCheck reports whether text is acceptable and lists any violations
type ToneCheck func(text string) (bool, []string)

// Result is the output of one pipeline run
type Result struct {
	PersonaType     personas.PersonaType            `json:"persona_type"`
	Confidence      float64                         `json:"confidence"`
	Persona         personas.Result                 `json:"persona"`
	MatchedPersonas []personas.Result               `json:"matched_personas"`
	Recommendations []recommend.Recommendation      `json:"recommendations"`
	Offers          []recommend.OfferRecommendation `json:"offers"`
	Signals         signals.Groups                  `json:"signals"`
	ActiveTags      []string                        `json:"active_tags"`
	Disclaimer      string                          `json:"disclaimer"`
}

// Engine holds the pipeline components. It keeps no per-run state.
type Engine struct {
	computer      *signals.SignalComputer
	classifier    *personas.Classifier
	catalog       *models.Catalog
	limit         int
	toneCheck     ToneCheck
	disclaimer    string
	includeOffers bool
	logger        arbor.ILogger
}

// Option configures the engine
type Option func(*Engine)

// WithCatalog sets the content catalog. Required.
func WithCatalog(catalog *models.Catalog) Option {
	return func(e *Engine) { e.catalog = catalog }
}

// WithLimit sets the number of education items per run
func WithLimit(limit int) Option {
	return func(e *Engine) { e.limit = limit }
}

// WithToneCheck sets the tone check applied to every rationale
func WithToneCheck(check ToneCheck) Option {
	return func(e *Engine) { e.toneCheck = check }
}

// WithDisclaimer overrides the disclaimer attached to results
func WithDisclaimer(disclaimer string) Option {
	return func(e *Engine) { e.disclaimer = disclaimer }
}

// WithOffers enables partner offer selection
func WithOffers(enabled bool) Option {
	return func(e *Engine) { e.includeOffers = enabled }
}

// WithLogger sets the logger
func WithLogger(logger arbor.ILogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an engine
func New(opts ...Option) *Engine {
	e := &Engine{
		computer:   signals.NewSignalComputer(),
		classifier: personas.NewClassifier(),
		limit:      recommend.DefaultLimit,
		disclaimer: guardrails.Disclaimer,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = arbor.NewLogger()
	}
	return e
}

// Generate runs the pipeline for one user's accounts and window-restricted transactions.
// A nil generator uses the template generator. Errors from each step are returned as-is.
func (e *Engine) Generate(ctx context.Context, accounts []models.Account, transactions []models.Transaction, windowDays int, gen recommend.Generator) (*Result, error) {
	if e.catalog == nil {
		return nil, ErrMissingCatalog
	}
	if gen == nil {
		gen = recommend.NewTemplateGenerator(e.logger)
	}

	groups, err := e.computer.ComputeSignals(accounts, transactions, windowDays)
	if err != nil {
		return nil, err
	}

	persona := e.classifier.Assign(groups)
	e.logger.Debug().
		Str("persona", string(persona.Type)).
		Str("confidence", fmt.Sprintf("%.2f", persona.Confidence)).
		Int("window_days", windowDays).
		Msg("Persona assigned")

	recommendations, err := recommend.GenerateRecommendations(ctx, gen, persona, groups, e.catalog, e.limit)
	if err != nil {
		return nil, err
	}

	var offers []recommend.OfferRecommendation
	if e.includeOffers {
		offers = recommend.SelectOffers(persona, groups, accounts, e.catalog, e.limit)
	}

	if e.toneCheck != nil {
		if err := e.checkTone(recommendations, offers); err != nil {
			return nil, err
		}
	}

	return &Result{
		PersonaType:     persona.Type,
		Confidence:      persona.Confidence,
		Persona:         persona,
		MatchedPersonas: e.classifier.MatchedRules(groups),
		Recommendations: recommendations,
		Offers:          offers,
		Signals:         groups,
		ActiveTags:      signals.ActiveTags(groups),
		Disclaimer:      e.disclaimer,
	}, nil
}

func (e *Engine) checkTone(recommendations []recommend.Recommendation, offers []recommend.OfferRecommendation) error {
	var violations []string
	for _, rec := range recommendations {
		if ok, found := e.toneCheck(rec.Rationale.Explanation); !ok {
			violations = append(violations, found...)
		}
	}
	for _, offer := range offers {
		if ok, found := e.toneCheck(offer.Rationale.Explanation); !ok {
			violations = append(violations, found...)
		}
	}
	if len(violations) == 0 {
		return nil
	}
	e.logger.Warn().Strs("violations", violations).Msg("Tone check failed")
	return fmt.Errorf("%w: %s", ErrToneViolation, strings.Join(violations, ", "))
}
