package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/spendsense/internal/personas"
)

func TestDefault(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, cat.Version)
	assert.NotEmpty(t, cat.Offers)
	for _, p := range personas.All() {
		assert.NotEmpty(t, ForPersona(cat, p), "persona %s should have education content", p)
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Education)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
version: "test"
education:
  - id: edu_one
    title: "One"
    summary: "First item"
    persona_tags: [balanced]
    signal_tags: [stable_income]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cat, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cat.Education, 1)
	assert.Equal(t, "edu_one", cat.Education[0].ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown persona",
			yaml: `
education:
  - id: a
    title: A
    summary: S
    persona_tags: [debt_consolidator]
`,
		},
		{
			name: "unknown signal tag",
			yaml: `
education:
  - id: a
    title: A
    summary: S
    persona_tags: [balanced]
    signal_tags: [big_spender]
`,
		},
		{
			name: "duplicate id",
			yaml: `
education:
  - id: a
    title: A
    summary: S
    persona_tags: [balanced]
  - id: a
    title: B
    summary: S
    persona_tags: [balanced]
`,
		},
		{
			name: "missing title",
			yaml: `
education:
  - id: a
    summary: S
    persona_tags: [balanced]
`,
		},
		{
			name: "malformed yaml",
			yaml: "education: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte("version: \"1\"\n"))
	assert.True(t, errors.Is(err, ErrEmptyCatalog))
}
