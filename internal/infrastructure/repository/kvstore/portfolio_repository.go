package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/ports"
)

const (
	DefaultKey = "portfolioData"

	maxUpdateAttempts = 16
)

// PortfolioRepository stores the whole portfolio as one JSON value under a
// single key. Writers in one process are serialized; writers in different
// processes are reconciled by the store's compare-and-swap.
type PortfolioRepository struct {
	store  ports.KeyValueStore
	key    string
	logger *slog.Logger

	mu sync.Mutex
}

func NewPortfolioRepository(store ports.KeyValueStore, key string, logger *slog.Logger) *PortfolioRepository {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PortfolioRepository{store: store, key: key, logger: logger}
}

// Load never fails: unreadable or corrupt data is logged and read as empty.
func (r *PortfolioRepository) Load(ctx context.Context) (domain.PortfolioData, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		r.logger.Warn("portfolio_load_failed", "key", r.key, "error", err)
		return emptyPortfolio(), nil
	}
	if !ok {
		return emptyPortfolio(), nil
	}
	return r.decode(raw), nil
}

// Update applies fn to the current value and writes the result back with a
// compare-and-swap. When another writer changed the value in between, fn runs
// again on the fresh value. An error from fn aborts the write and is returned
// unchanged.
func (r *PortfolioRepository) Update(ctx context.Context, fn func(*domain.PortfolioData) error) (domain.PortfolioData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		raw, ok, err := r.store.Get(ctx, r.key)
		if err != nil {
			return domain.PortfolioData{}, domain.WrapError(domain.ErrPersistence, "read portfolio", err)
		}
		data := emptyPortfolio()
		if ok {
			data = r.decode(raw)
		}

		if err := fn(&data); err != nil {
			return domain.PortfolioData{}, err
		}
		if data.Documents == nil {
			data.Documents = []domain.Document{}
		}

		encoded, err := json.Marshal(data)
		if err != nil {
			return domain.PortfolioData{}, domain.WrapError(domain.ErrPersistence, "encode portfolio", err)
		}
		swapped, err := r.store.CompareAndSwap(ctx, r.key, raw, ok, encoded)
		if err != nil {
			r.logger.Error("portfolio_save_failed", "key", r.key, "error", err)
			return domain.PortfolioData{}, domain.WrapError(domain.ErrPersistence, "write portfolio", err)
		}
		if swapped {
			return data, nil
		}
		r.logger.Debug("portfolio_update_conflict", "key", r.key, "attempt", attempt)
	}
	return domain.PortfolioData{}, domain.WrapError(
		domain.ErrTemporary,
		"write portfolio",
		fmt.Errorf("value kept changing after %d attempts", maxUpdateAttempts),
	)
}

func (r *PortfolioRepository) decode(raw []byte) domain.PortfolioData {
	var data domain.PortfolioData
	if err := json.Unmarshal(raw, &data); err != nil {
		r.logger.Warn("portfolio_decode_failed", "key", r.key, "error", fmt.Errorf("unmarshal: %w", err))
		return emptyPortfolio()
	}
	if data.Documents == nil {
		data.Documents = []domain.Document{}
	}
	return data
}

func emptyPortfolio() domain.PortfolioData {
	return domain.PortfolioData{Documents: []domain.Document{}}
}
