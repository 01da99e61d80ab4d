// Package bootstrap wires the marketplace: repositories, session slot,
// object storage, queue, the simulators and every use case, shared by the
// API and worker binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/terravilla/marketplace/internal/config"
	"github.com/terravilla/marketplace/internal/core/ports"
	"github.com/terravilla/marketplace/internal/core/usecase"
	"github.com/terravilla/marketplace/internal/infrastructure/docintel"
	"github.com/terravilla/marketplace/internal/infrastructure/queue/nats"
	"github.com/terravilla/marketplace/internal/infrastructure/registry"
	"github.com/terravilla/marketplace/internal/infrastructure/report"
	"github.com/terravilla/marketplace/internal/infrastructure/repository/memory"
	"github.com/terravilla/marketplace/internal/infrastructure/repository/postgres"
	"github.com/terravilla/marketplace/internal/infrastructure/resilience"
	sessionfs "github.com/terravilla/marketplace/internal/infrastructure/sessionslot/localfs"
	storagefs "github.com/terravilla/marketplace/internal/infrastructure/storage/localfs"
	"github.com/terravilla/marketplace/internal/observability/logging"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue        *nats.Queue
	Session      *usecase.SessionManager
	Wizard       *usecase.ListingWizardUseCase
	Search       *usecase.SearchUseCase
	Plots        ports.PlotRepository
	Payments     *usecase.PaymentSimulator
	Publish      *usecase.PublishListingUseCase
	Verify       *usecase.VerifyListingUseCase
	Market       *usecase.MarketUseCase
	Transactions *usecase.TransactionUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	plots, comparisons, transactions, db, err := buildRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	storage, err := storagefs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	slot, err := sessionfs.New(cfg.SessionSlotPath)
	if err != nil {
		return nil, fmt.Errorf("init session slot: %w", err)
	}
	session := usecase.NewSessionManager(slot)
	if err := session.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy(), logger)
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		Executor: executor,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init listing queue: %w", err)
	}

	publish := usecase.NewPublishListingUseCase(plots, queue)
	payments := usecase.NewPaymentSimulator(publish.Publish, logger,
		usecase.WithPaymentDelays(cfg.PaymentProcessingDelay, cfg.PaymentSettleDelay))

	analyzer := docintel.New(cfg.AnalyzerLatency, logger)
	landRegistry := registry.New(cfg.RegistryLatency, executor, logger)
	verify := usecase.NewVerifyListingUseCase(plots, analyzer, landRegistry)

	market := usecase.NewMarketUseCase(comparisons, plots, report.NewExcelBuilder())

	return &App{
		Config:       cfg,
		Logger:       logger,
		Queue:        queue,
		Session:      session,
		Wizard:       usecase.NewListingWizardUseCase(plots, storage),
		Search:       usecase.NewSearchUseCase(plots),
		Plots:        plots,
		Payments:     payments,
		Publish:      publish,
		Verify:       verify,
		Market:       market,
		Transactions: usecase.NewTransactionUseCase(transactions, plots),

		closeFn: func() {
			payments.Close()
			queue.Close()
			if db != nil {
				_ = db.Close()
			}
		},
	}, nil
}

// ValidateWorkerBackend rejects configurations where the verification worker
// cannot see the API's catalog. The in-memory repository is process-local, so
// a worker running against it would never find the plots the API accepted.
func ValidateWorkerBackend(cfg config.Config) error {
	switch cfg.CatalogBackend {
	case "", "memory":
		return fmt.Errorf(
			"catalog backend %q is process-local: the worker needs CATALOG_BACKEND=postgres to share the catalog with the API",
			cfg.CatalogBackend)
	default:
		return nil
	}
}

func buildRepositories(ctx context.Context, cfg config.Config) (
	ports.PlotRepository,
	ports.PriceComparisonRepository,
	ports.TransactionRepository,
	*sql.DB,
	error,
) {
	comparisons := memory.NewPriceComparisonRepository(memory.SeedPriceComparisons())

	switch cfg.CatalogBackend {
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		plots := postgres.NewPlotRepository(db)
		if err := plots.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, nil, fmt.Errorf("ensure plots schema: %w", err)
		}
		transactions := postgres.NewTransactionRepository(db)
		if err := transactions.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, nil, fmt.Errorf("ensure transactions schema: %w", err)
		}
		return plots, comparisons, transactions, db, nil
	case "", "memory":
		plots := memory.NewPlotRepository(memory.SeedPlots())
		return plots, comparisons, memory.NewTransactionRepository(), nil, nil
	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown catalog backend: %q", cfg.CatalogBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
