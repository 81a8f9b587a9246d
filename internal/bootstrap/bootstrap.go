package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kirillkom/portfolio-builder/internal/config"
	"github.com/kirillkom/portfolio-builder/internal/core/knowledge"
	"github.com/kirillkom/portfolio-builder/internal/core/portfolio"
	"github.com/kirillkom/portfolio-builder/internal/core/ports"
	"github.com/kirillkom/portfolio-builder/internal/core/usecase"
	"github.com/kirillkom/portfolio-builder/internal/infrastructure/export/pdf"
	"github.com/kirillkom/portfolio-builder/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/portfolio-builder/internal/infrastructure/queue/inline"
	"github.com/kirillkom/portfolio-builder/internal/infrastructure/queue/nats"
	"github.com/kirillkom/portfolio-builder/internal/infrastructure/repository/kvstore"
	"github.com/kirillkom/portfolio-builder/internal/infrastructure/resilience"
	"github.com/kirillkom/portfolio-builder/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/portfolio-builder/internal/infrastructure/storage/sqlite"
)

type App struct {
	Config config.Config
	Engine *portfolio.Engine

	Queue     ports.MessageQueue
	Repo      ports.PortfolioRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	CatalogUC ports.DocumentCatalog
	ViewUC    ports.PortfolioViewer
	ExportUC  ports.PortfolioExporter

	// InlineProcessing is true when accepted documents are processed in the
	// uploading request instead of by cmd/worker.
	InlineProcessing bool

	closeFn func()
}

// New wires the application. observer may be nil; when set it receives
// circuit breaker transitions of the store and queue operations.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, observer resilience.StateObserver) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kb, err := knowledge.Load(cfg.KnowledgeBasePath)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	engine := portfolio.NewEngine(kb, portfolio.RandomFromSeed(cfg.RandomSeed))

	executorCfg := resilience.DefaultConfig()
	executorCfg.BreakerEnabled = cfg.ResilienceBreakerEnabled
	executorCfg.RetryMaxAttempts = cfg.ResilienceRetryAttempts
	executor := resilience.NewExecutor(executorCfg, logger)
	if observer != nil {
		executor.OnStateChange(observer)
	}

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	store, db, err := openStore(ctx, cfg, executor)
	if err != nil {
		return nil, err
	}
	if db != nil {
		closers = append(closers, func() { _ = db.Close() })
	}
	repo := kvstore.NewPortfolioRepository(store, cfg.StoreKey, logger)

	var (
		queue ports.MessageQueue
		inbox *inline.Queue
	)
	switch cfg.QueueBackend {
	case config.QueueBackendNATS:
		natsQueue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		closers = append(closers, natsQueue.Close)
		queue = natsQueue
	default:
		inbox = inline.New()
		queue = inbox
	}

	processUC := usecase.NewProcessUseCase(repo, engine)
	if inbox != nil {
		if err := inbox.SubscribeDocumentAccepted(ctx, processUC.ProcessByID); err != nil {
			closeAll()
			return nil, fmt.Errorf("subscribe inline processing: %w", err)
		}
	}

	pdfRenderer, err := pdf.New(kb.Export, cfg.ExportFontPath, cfg.ExportFontBoldPath)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("init pdf export: %w", err)
	}
	viewUC := usecase.NewPortfolioUseCase(repo, engine, cfg.DefaultStudentName)
	exportUC := usecase.NewExportUseCase(viewUC, kb.Export.FilePrefix, pdfRenderer, xlsx.New(kb.Export))

	policy := usecase.UploadPolicy{MaxFiles: cfg.UploadMaxFiles, MaxFileBytes: cfg.UploadMaxFileBytes}

	return &App{
		Config: cfg,
		Engine: engine,

		Queue:     queue,
		Repo:      repo,
		IngestUC:  usecase.NewIngestUseCase(repo, queue, policy),
		ProcessUC: processUC,
		CatalogUC: usecase.NewCatalogUseCase(repo),
		ViewUC:    viewUC,
		ExportUC:  exportUC,

		InlineProcessing: inbox != nil,

		closeFn: closeAll,
	}, nil
}

func openStore(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.KeyValueStore, *sql.DB, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendSQLite:
		if err := os.MkdirAll(cfg.StorePath, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create store dir: %w", err)
		}
		db, err := sqlite.OpenDB(filepath.Join(cfg.StorePath, "portfolio.db"))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		store := sqlite.New(db, executor)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, db, nil
	default:
		store, err := localfs.New(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("init file storage: %w", err)
		}
		return store, nil, nil
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
