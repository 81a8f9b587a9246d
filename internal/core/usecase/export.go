package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/portfolio"
	"github.com/kirillkom/portfolio-builder/internal/core/ports"
)

type ExportUseCase struct {
	viewer     ports.PortfolioViewer
	renderers  map[domain.ExportFormat]ports.PortfolioRenderer
	filePrefix string
}

func NewExportUseCase(viewer ports.PortfolioViewer, filePrefix string, renderers ...ports.PortfolioRenderer) *ExportUseCase {
	byFormat := make(map[domain.ExportFormat]ports.PortfolioRenderer, len(renderers))
	for _, r := range renderers {
		byFormat[r.Format()] = r
	}
	return &ExportUseCase{viewer: viewer, renderers: byFormat, filePrefix: filePrefix}
}

func (uc *ExportUseCase) Export(ctx context.Context, format domain.ExportFormat, w io.Writer) (string, error) {
	renderer, ok := uc.renderers[format]
	if !ok {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "export portfolio", fmt.Errorf("format %q", format))
	}

	view, err := uc.viewer.View(ctx)
	if err != nil {
		return "", fmt.Errorf("build portfolio view: %w", err)
	}
	if err := renderer.Render(ctx, view, w); err != nil {
		return "", fmt.Errorf("render %s: %w", format, err)
	}
	return portfolio.ExportFileName(uc.filePrefix, view.StudentName, view.GeneratedAt, renderer.Extension()), nil
}
