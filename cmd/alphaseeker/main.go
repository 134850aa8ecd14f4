package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/areddy/alphaseeker/internal/clients/broker"
	"github.com/areddy/alphaseeker/internal/clients/yahoo"
	"github.com/areddy/alphaseeker/internal/config"
	"github.com/areddy/alphaseeker/internal/database"
	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/internal/modules/analyst"
	"github.com/areddy/alphaseeker/internal/modules/auth"
	"github.com/areddy/alphaseeker/internal/modules/discovery"
	"github.com/areddy/alphaseeker/internal/modules/market"
	"github.com/areddy/alphaseeker/internal/modules/portfolio"
	"github.com/areddy/alphaseeker/internal/modules/rebalancing"
	"github.com/areddy/alphaseeker/internal/modules/scoring"
	"github.com/areddy/alphaseeker/internal/modules/screener"
	"github.com/areddy/alphaseeker/internal/modules/search"
	"github.com/areddy/alphaseeker/internal/scheduler"
	"github.com/areddy/alphaseeker/internal/server"
	"github.com/areddy/alphaseeker/pkg/logger"
)

func main() {
	root := &cobra.Command{
		Use:           "alphaseeker",
		Short:         "Opportunity scoring and portfolio rebalancing engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServerCmd(), newScanCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the HTTP API server with scheduled daily scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newScanCmd() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one screening pass and print the picks as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(region)
		},
	}
	cmd.Flags().StringVar(&region, "region", "IN", "market region (IN or US)")

	return cmd
}

// core is the assembled service graph shared by the subcommands
type core struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *database.DB
	yahoo    *yahoo.Client
	store    *market.Store
	universe market.Universe
	model    *scoring.Model
	screener *screener.Service
}

func buildCore() (*core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	universe := market.DefaultUniverse()
	if cfg.UniversePath != "" {
		universe, err = market.LoadUniverse(cfg.UniversePath)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("loading universe: %w", err)
		}
	}

	provider := yahoo.NewClient(log)
	store := market.NewStore(provider, log)
	model := scoring.NewModel(log)

	return &core{
		cfg:      cfg,
		log:      log,
		db:       db,
		yahoo:    provider,
		store:    store,
		universe: universe,
		model:    model,
		screener: screener.NewService(store, universe, model, cfg.Screen, log),
	}, nil
}

func runServer() error {
	c, err := buildCore()
	if err != nil {
		return err
	}
	defer c.db.Close()

	cfg, log := c.cfg, c.log
	log.Info().Msg("Starting AlphaSeeker")

	authService := auth.NewService(c.db.Conn(), cfg.JWTSecret,
		time.Duration(cfg.TokenTTLMinutes)*time.Minute, log)

	repo := portfolio.NewRepository(c.db.Conn())
	valuation := portfolio.NewValuationEngine(c.store, log)
	portfolioService := portfolio.NewService(repo, c.store, valuation, log)
	brokerClient := broker.NewClient(cfg.BrokerBaseURL, cfg.BrokerAPIKey, cfg.BrokerAPISecret, log)

	rebalancer := rebalancing.NewService(c.store, c.model, cfg.Screen, log)
	discoveryService := discovery.NewService(c.screener, portfolioService, rebalancer, log)

	searchService := search.NewService(c.yahoo, log)
	analystService := analyst.NewService(cfg.ReasoningServiceURL, cfg.ReasoningAPIKey, c.store, log)

	sched := scheduler.New(log)
	// Pre-warm the scan cache after each region's market close
	if err := sched.AddJob("30 10 * * MON-FRI", scheduler.NewScanJob(c.screener, domain.RegionIndia, log)); err != nil {
		return fmt.Errorf("registering scan job: %w", err)
	}
	if err := sched.AddJob("30 21 * * MON-FRI", scheduler.NewScanJob(c.screener, domain.RegionUS, log)); err != nil {
		return fmt.Errorf("registering scan job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Log:       log,
		Auth:      auth.NewHandler(authService, log),
		AuthMW:    authService.Middleware,
		Portfolio: portfolio.NewHandler(portfolioService, brokerClient, log),
		Screener:  screener.NewHandler(c.screener, log),
		Discovery: discovery.NewHandler(discoveryService, log),
		Search:    search.NewHandler(searchService, log),
		Analyst:   analyst.NewHandler(analystService, log),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

func runScan(rawRegion string) error {
	region := domain.Region(strings.ToUpper(rawRegion))
	if region != domain.RegionIndia && region != domain.RegionUS {
		return fmt.Errorf("region must be IN or US, got %q", rawRegion)
	}

	c, err := buildCore()
	if err != nil {
		return err
	}
	defer c.db.Close()

	picks, err := c.screener.ScanFresh(region)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(picks, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
