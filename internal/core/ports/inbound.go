package ports

import (
	"context"
	"io"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
)

// DocumentIngestor is the inbound contract for the upload flow. An empty
// studentName leaves the stored name unchanged.
type DocumentIngestor interface {
	Upload(ctx context.Context, files []domain.UploadFile, studentName string) (domain.UploadReport, error)
}

// DocumentProcessor classifies and describes one stored record.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentCatalog is the inbound read/write model for the stored record list.
type DocumentCatalog interface {
	List(ctx context.Context) (domain.PortfolioData, error)
	Remove(ctx context.Context, documentID string) error
	Clear(ctx context.Context) error
	SetStudentName(ctx context.Context, name string) (domain.PortfolioData, error)
}

type PortfolioViewer interface {
	View(ctx context.Context) (domain.PortfolioView, error)
}

// PortfolioExporter writes the portfolio in the requested format and returns
// the suggested download file name.
type PortfolioExporter interface {
	Export(ctx context.Context, format domain.ExportFormat, w io.Writer) (string, error)
}

// DocumentAnalyzer exposes the stateless engine to adapters.
type DocumentAnalyzer interface {
	ClassifyNames(names []string) []domain.Document
	Describe(name string) string
	Summarize(docs []domain.Document, studentName string) string
}
