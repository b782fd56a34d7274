package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/common"
	"github.com/ternarybob/spendsense/internal/interfaces"
)

// Output formats
const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

// HTML renders an insight record as a standalone HTML page
func HTML(record *interfaces.InsightRecord) ([]byte, error) {
	return MarkdownToHTML(Markdown(record), documentTitle(record))
}

// PDF writes an insight record as a PDF document
func PDF(record *interfaces.InsightRecord, w io.Writer) error {
	content, err := MarkdownToPDF(Markdown(record), documentTitle(record))
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

func documentTitle(record *interfaces.InsightRecord) string {
	return fmt.Sprintf("SpendSense insights for %s", record.UserID)
}

// Service writes insight reports to disk
type Service struct {
	outputDir string
	format    string
	logger    arbor.ILogger
}

// NewService creates a new report service
func NewService(config common.ReportConfig, logger arbor.ILogger) *Service {
	format := config.Format
	if format == "" {
		format = FormatHTML
	}
	return &Service{
		outputDir: config.OutputDir,
		format:    format,
		logger:    logger,
	}
}

// Render produces the document bytes for a record in the given format.
// An empty format uses the configured default.
func (s *Service) Render(record *interfaces.InsightRecord, format string) ([]byte, error) {
	if format == "" {
		format = s.format
	}

	s.logger.Debug().
		Str("run_id", record.RunID).
		Str("format", format).
		Msg("Rendering report")

	switch strings.ToLower(format) {
	case FormatMarkdown:
		return []byte(Markdown(record)), nil
	case FormatHTML:
		return HTML(record)
	case FormatPDF:
		var buf bytes.Buffer
		if err := PDF(record, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// Write renders a record and saves it under the output directory, returning the file path
func (s *Service) Write(record *interfaces.InsightRecord, format string) (string, error) {
	if format == "" {
		format = s.format
	}
	format = strings.ToLower(format)

	content, err := s.Render(record, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%d_%s.%s", record.UserID, record.WindowDays, record.RunID, format))
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	s.logger.Info().
		Str("user_id", record.UserID).
		Str("path", path).
		Int("size", len(content)).
		Msg("Report written")

	return path, nil
}
