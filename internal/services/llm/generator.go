package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/guardrails"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/recommend"
	"github.com/ternarybob/spendsense/internal/signals"
)

const rephraseInstruction = `You rewrite short financial education explanations for a budgeting app.
Rules:
- Keep every number, dollar amount, percentage and account reference exactly as written.
- Do not add new facts, numbers or advice. This is education, not financial advice.
- Use a supportive, neutral tone. Never shame or judge the reader.
- Reply with the rewritten explanation only, in at most three sentences.`

// Generator rephrases template rationales with a language model.
// Content selection and citations always come from the template generator; a rewrite is kept only
// when it repeats every cited value verbatim and passes the tone check.
type Generator struct {
	provider  Provider
	template  *recommend.TemplateGenerator
	toneCheck func(text string) (bool, []string)
	model     string
	logger    arbor.ILogger
}

// GeneratorOption configures the generator
type GeneratorOption func(*Generator)

// WithModel sets the model passed to the provider
func WithModel(model string) GeneratorOption {
	return func(g *Generator) {
		g.model = model
	}
}

// WithToneCheck replaces the default guardrails tone check
func WithToneCheck(check func(text string) (bool, []string)) GeneratorOption {
	return func(g *Generator) {
		g.toneCheck = check
	}
}

// NewGenerator creates a rephrasing generator over provider
func NewGenerator(provider Provider, logger arbor.ILogger, opts ...GeneratorOption) *Generator {
	if logger == nil {
		logger = arbor.NewLogger()
	}
	g := &Generator{
		provider:  provider,
		template:  recommend.NewTemplateGenerator(logger),
		toneCheck: guardrails.CheckTone,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateEducation delegates to the template generator so selection stays catalog-grounded
func (g *Generator) GenerateEducation(ctx context.Context, persona personas.Result, groups signals.Groups, catalog *models.Catalog, limit int) ([]recommend.EducationItem, error) {
	return g.template.GenerateEducation(ctx, persona, groups, catalog, limit)
}

// GenerateRationale returns the template rationale with a rephrased explanation when the rewrite is acceptable.
// Provider failures fall back to the template text; only context cancellation is returned as an error.
func (g *Generator) GenerateRationale(ctx context.Context, item recommend.EducationItem, persona personas.Result, groups signals.Groups) (recommend.Rationale, error) {
	rationale, err := g.template.GenerateRationale(ctx, item, persona, groups)
	if err != nil {
		return rationale, err
	}
	if g.provider == nil {
		return rationale, nil
	}

	resp, err := g.provider.GenerateContent(ctx, &ContentRequest{
		Prompt:            buildPrompt(item, rationale),
		SystemInstruction: rephraseInstruction,
		Model:             g.model,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return recommend.Rationale{}, ctxErr
		}
		g.logger.Warn().Err(err).Str("content_id", item.Content.ID).Msg("Rephrase failed, keeping template rationale")
		return rationale, nil
	}

	rewrite := strings.TrimSpace(resp.Text)
	if reason := g.rejectReason(rewrite, rationale.Citations); reason != "" {
		g.logger.Debug().
			Str("content_id", item.Content.ID).
			Str("reason", reason).
			Msg("Rephrase rejected, keeping template rationale")
		return rationale, nil
	}

	rationale.Explanation = rewrite
	return rationale, nil
}

// rejectReason returns why a rewrite cannot replace the template text, or "" when it is acceptable
func (g *Generator) rejectReason(rewrite string, citations []signals.DataPoint) string {
	if rewrite == "" {
		return "empty rewrite"
	}
	if missing := MissingCitationValues(rewrite, citations); len(missing) > 0 {
		return "missing cited values: " + strings.Join(missing, ", ")
	}
	if g.toneCheck != nil {
		if ok, violations := g.toneCheck(rewrite); !ok {
			return "tone: " + strings.Join(violations, ", ")
		}
	}
	return ""
}

// MissingCitationValues lists cited values that do not appear verbatim in text
func MissingCitationValues(text string, citations []signals.DataPoint) []string {
	var missing []string
	for _, c := range citations {
		if c.Value != "" && !strings.Contains(text, c.Value) {
			missing = append(missing, c.Value)
		}
	}
	return missing
}

func buildPrompt(item recommend.EducationItem, rationale recommend.Rationale) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Article: %s\n", item.Content.Title)
	fmt.Fprintf(&b, "Explanation: %s\n", rationale.Explanation)
	b.WriteString("Values that must appear exactly:\n")
	for _, c := range rationale.Citations {
		fmt.Fprintf(&b, "- %s: %s\n", c.Signal, c.Value)
	}
	return b.String()
}
