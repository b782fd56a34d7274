// Package catalog loads the education and partner offer catalog.
// An embedded default is used unless a catalog file is configured.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/spendsense/internal/models"
	"github.com/ternarybob/spendsense/internal/personas"
	"github.com/ternarybob/spendsense/internal/signals"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// ErrEmptyCatalog is returned when a catalog contains no education items
var ErrEmptyCatalog = errors.New("catalog has no education items")

// Default returns the embedded catalog
func Default() (*models.Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, falling back to the embedded default when path is empty
func Load(path string) (*models.Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates catalog YAML
func Parse(data []byte) (*models.Catalog, error) {
	var cat models.Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := Validate(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks required fields, unique IDs and known persona and signal tags
func Validate(cat *models.Catalog) error {
	if len(cat.Education) == 0 {
		return ErrEmptyCatalog
	}
	if err := validator.New().Struct(cat); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	var problems []string
	seen := make(map[string]bool)
	check := func(kind, id string, personaTags, signalTags []string) {
		if seen[id] {
			problems = append(problems, fmt.Sprintf("duplicate id %s", id))
		}
		seen[id] = true
		for _, tag := range personaTags {
			if !personas.PersonaType(tag).Valid() {
				problems = append(problems, fmt.Sprintf("%s %s: unknown persona tag %s", kind, id, tag))
			}
		}
		for _, tag := range signalTags {
			if !signals.KnownTag(tag) {
				problems = append(problems, fmt.Sprintf("%s %s: unknown signal tag %s", kind, id, tag))
			}
		}
	}

	for _, item := range cat.Education {
		check("education", item.ID, item.PersonaTags, item.SignalTags)
	}
	for _, offer := range cat.Offers {
		check("offer", offer.ID, offer.PersonaTags, offer.SignalTags)
		for _, tag := range append(append([]string{}, offer.Eligibility.RequiredSignals...), offer.Eligibility.ExcludedSignals...) {
			if !signals.KnownTag(tag) {
				problems = append(problems, fmt.Sprintf("offer %s: unknown eligibility signal %s", offer.ID, tag))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ForPersona returns the education items tagged for a persona, in catalog order
func ForPersona(cat *models.Catalog, persona personas.PersonaType) []models.ContentItem {
	var items []models.ContentItem
	for _, item := range cat.Education {
		if item.HasPersona(string(persona)) {
			items = append(items, item)
		}
	}
	return items
}
