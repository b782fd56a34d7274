package report

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFInfo describes a written PDF file
type PDFInfo struct {
	PageCount int
	Encrypted bool
}

// InspectPDF reads a PDF file and returns its page count
func InspectPDF(path string) (*PDFInfo, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	return &PDFInfo{
		PageCount: pdfCtx.PageCount,
		Encrypted: pdfCtx.Encrypt != nil,
	}, nil
}
