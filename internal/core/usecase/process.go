package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/portfolio"
	"github.com/kirillkom/portfolio-builder/internal/core/ports"
)

type ProcessUseCase struct {
	repo   ports.PortfolioRepository
	engine *portfolio.Engine
}

func NewProcessUseCase(repo ports.PortfolioRepository, engine *portfolio.Engine) *ProcessUseCase {
	return &ProcessUseCase{repo: repo, engine: engine}
}

// ProcessByID classifies the stored record and stores its generated
// description. Processing an already processed record regenerates the
// description and keeps the category.
func (uc *ProcessUseCase) ProcessByID(ctx context.Context, documentID string) error {
	_, err := uc.repo.Update(ctx, func(data *domain.PortfolioData) error {
		i := data.IndexOf(documentID)
		if i < 0 {
			return domain.WrapError(domain.ErrDocumentNotFound, "process document", fmt.Errorf("id %s", documentID))
		}
		data.Documents[i] = uc.engine.Process(data.Documents[i])
		return nil
	})
	if err != nil {
		return fmt.Errorf("process document %s: %w", documentID, err)
	}
	return nil
}
