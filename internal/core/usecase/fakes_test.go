package usecase

import (
	"context"
	"errors"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
)

type repoFake struct {
	data      domain.PortfolioData
	loadErr   error
	updateErr error
	updates   int

	// conflicts makes the next Update calls discard fn's result and run it
	// again, as a lost compare-and-swap does.
	conflicts int
}

func (f *repoFake) Load(context.Context) (domain.PortfolioData, error) {
	if f.loadErr != nil {
		return domain.PortfolioData{}, f.loadErr
	}
	return clonePortfolio(f.data), nil
}

func (f *repoFake) Update(_ context.Context, fn func(*domain.PortfolioData) error) (domain.PortfolioData, error) {
	if f.updateErr != nil {
		return domain.PortfolioData{}, f.updateErr
	}
	next := clonePortfolio(f.data)
	if err := fn(&next); err != nil {
		return domain.PortfolioData{}, err
	}
	for f.conflicts > 0 {
		f.conflicts--
		next = clonePortfolio(f.data)
		if err := fn(&next); err != nil {
			return domain.PortfolioData{}, err
		}
	}
	f.data = next
	f.updates++
	return clonePortfolio(next), nil
}

func clonePortfolio(data domain.PortfolioData) domain.PortfolioData {
	out := data
	out.Documents = append([]domain.Document(nil), data.Documents...)
	return out
}

type queueFake struct {
	published []string
	err       error
	onPublish func(context.Context, string) error
}

func (f *queueFake) PublishDocumentAccepted(ctx context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	if f.onPublish != nil {
		return f.onPublish(ctx, documentID)
	}
	return nil
}

func (f *queueFake) SubscribeDocumentAccepted(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('0'+n))
	}
}
