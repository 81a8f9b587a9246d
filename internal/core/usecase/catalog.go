package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/ports"
)

type CatalogUseCase struct {
	repo ports.PortfolioRepository
}

func NewCatalogUseCase(repo ports.PortfolioRepository) *CatalogUseCase {
	return &CatalogUseCase{repo: repo}
}

func (uc *CatalogUseCase) List(ctx context.Context) (domain.PortfolioData, error) {
	data, err := uc.repo.Load(ctx)
	if err != nil {
		return domain.PortfolioData{}, fmt.Errorf("list documents: %w", err)
	}
	if data.Documents == nil {
		data.Documents = []domain.Document{}
	}
	return data, nil
}

func (uc *CatalogUseCase) Remove(ctx context.Context, documentID string) error {
	_, err := uc.repo.Update(ctx, func(data *domain.PortfolioData) error {
		i := data.IndexOf(documentID)
		if i < 0 {
			return domain.WrapError(domain.ErrDocumentNotFound, "remove document", fmt.Errorf("id %s", documentID))
		}
		data.Documents = append(data.Documents[:i], data.Documents[i+1:]...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove document %s: %w", documentID, err)
	}
	return nil
}

// Clear drops every record; the student name survives.
func (uc *CatalogUseCase) Clear(ctx context.Context) error {
	_, err := uc.repo.Update(ctx, func(data *domain.PortfolioData) error {
		data.Documents = []domain.Document{}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	return nil
}

func (uc *CatalogUseCase) SetStudentName(ctx context.Context, name string) (domain.PortfolioData, error) {
	data, err := uc.repo.Update(ctx, func(data *domain.PortfolioData) error {
		data.StudentName = strings.TrimSpace(name)
		return nil
	})
	if err != nil {
		return domain.PortfolioData{}, fmt.Errorf("set student name: %w", err)
	}
	return data, nil
}
