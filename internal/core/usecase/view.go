package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/portfolio"
	"github.com/kirillkom/portfolio-builder/internal/core/ports"
)

type PortfolioUseCase struct {
	repo        ports.PortfolioRepository
	engine      *portfolio.Engine
	defaultName string
	now         func() time.Time
}

func NewPortfolioUseCase(repo ports.PortfolioRepository, engine *portfolio.Engine, defaultName string) *PortfolioUseCase {
	return &PortfolioUseCase{
		repo:        repo,
		engine:      engine,
		defaultName: defaultName,
		now:         time.Now,
	}
}

func (uc *PortfolioUseCase) View(ctx context.Context) (domain.PortfolioView, error) {
	data, err := uc.repo.Load(ctx)
	if err != nil {
		return domain.PortfolioView{}, fmt.Errorf("load portfolio: %w", err)
	}
	return uc.engine.BuildView(data, uc.defaultName, uc.now()), nil
}
