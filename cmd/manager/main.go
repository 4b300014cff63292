package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"proc-lab/domain"
	"proc-lab/infrastructure/httpapi"
	"proc-lab/internal"
	"proc-lab/observability"
	"proc-lab/registry"
	"proc-lab/repositories"
	"proc-lab/runtime"
	"proc-lab/runtime/workers"
	"proc-lab/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Manager terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanup always executes.
func run() (int, error) {
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	policy, err := internal.LoadPolicy(config.PolicyFile)
	if err != nil {
		return exitConfig, err
	}

	// The journal lives in memory unless an operator points it at a path for
	// a debugging session; managed state never outlives the service.
	options := badger.DefaultOptions(config.JournalPath).WithLoggingLevel(badger.ERROR)
	if config.JournalPath == "" {
		options = options.WithInMemory(true)
	}
	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("journal opening failed: %w", err)
	}
	defer db.Close()

	classifier, err := domain.NewClassifier()
	if err != nil {
		return exitRuntime, fmt.Errorf("classifier build failed: %w", err)
	}

	store := registry.NewRegistry(logger)
	journal := repositories.NewTransitionRepository(db, logger)
	monitoring := observability.NewMonitoringManager(logger)

	processService := services.NewProcessService(store, classifier, journal, monitoring, logger)
	rebalancerService := services.NewRebalancerService(store, journal, monitoring, policy, logger)
	statsService := services.NewStatsService(store, logger)

	apiServer := httpapi.NewServer(
		fmt.Sprintf("%s:%d", config.Host, config.Port),
		logger,
		processService,
		rebalancerService,
		statsService,
		journal,
		monitoring,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supervisor := runtime.NewSupervisor(logger)
	supervisor.Add(
		apiServer,
		workers.NewRebalanceWorker(logger, rebalancerService, config.RebalanceInterval),
		workers.NewHeartbeatWorker(logger, monitoring, config.HeartbeatInterval),
	)

	supervisor.Run(ctx)

	logger.Info("Manager stopped")
	return exitOK, nil
}
