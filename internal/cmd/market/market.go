// Package market parses market daemon flags and launches the engine.
package market

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	apperrors "github.com/amanah-market/amanah/internal/errors"
	"github.com/amanah-market/amanah/internal/market/ledger"
	"github.com/amanah-market/amanah/internal/market/service"
	"github.com/amanah-market/amanah/internal/market/storage/sqlite"
	entrypoint "github.com/amanah-market/amanah/internal/platform/cmd"
	platformgrpc "github.com/amanah-market/amanah/internal/platform/grpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const checkDialTimeout = 5 * time.Second

// Config holds market daemon configuration.
type Config struct {
	Port       int    `env:"AMANAH_MARKET_PORT" envDefault:"8090"`
	DBPath     string `env:"AMANAH_DB_PATH" envDefault:"market.db"`
	LedgerPath string `env:"AMANAH_LEDGER_PATH" envDefault:"ledger.db"`

	// BootstrapOperator seeds the marketplace at first start when set.
	// An already-bootstrapped database ignores it.
	BootstrapOperator string `env:"AMANAH_BOOTSTRAP_OPERATOR"`
	// BootstrapCommissionPercent is the genesis default commission rate.
	BootstrapCommissionPercent int64 `env:"AMANAH_BOOTSTRAP_COMMISSION_PERCENT" envDefault:"10"`

	// Check probes a running daemon's health endpoint and exits.
	Check bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The market daemon health port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the marketplace SQLite database")
	fs.StringVar(&cfg.LedgerPath, "ledger", cfg.LedgerPath, "Path to the transfer ledger SQLite database")
	fs.StringVar(&cfg.BootstrapOperator, "bootstrap-operator", cfg.BootstrapOperator, "Operator participant id for first-start genesis")
	fs.BoolVar(&cfg.Check, "check", false, "Probe a running daemon's health endpoint and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the market daemon, or probes a running one with -check.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Check {
		return Check(ctx, cfg)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMarket, func(ctx context.Context) error {
		return Serve(ctx, cfg)
	})
}

// Check dials the daemon's health endpoint and waits for SERVING.
func Check(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf("localhost:%d", cfg.Port)
	conn, err := platformgrpc.DialWithHealth(ctx, addr, checkDialTimeout, log.Printf, platformgrpc.DefaultClientDialOptions()...)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Serve opens the marketplace and ledger databases, seeds genesis when
// configured, and serves the gRPC health endpoint until ctx ends. The
// engine itself has no network API; external surfaces embed it in-process.
func Serve(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close marketplace store: %v", err)
		}
	}()

	transfers, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := transfers.Close(); err != nil {
			log.Printf("close transfer ledger: %v", err)
		}
	}()

	svc := service.NewService(service.Stores{
		Roles:    store,
		Listings: store,
		Orders:   store,
		Settings: store,
		Events:   store,
	}, transfers)

	if cfg.BootstrapOperator != "" {
		err := svc.Bootstrap(ctx, service.BootstrapInput{
			OperatorID:               cfg.BootstrapOperator,
			DefaultCommissionPercent: cfg.BootstrapCommissionPercent,
		})
		switch {
		case err == nil:
		case apperrors.IsCode(err, apperrors.CodeAlreadyGranted):
			log.Printf("marketplace already bootstrapped, ignoring genesis config")
		default:
			return err
		}
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}

	grpcServer := gogrpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(entrypoint.ServiceMarket, grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	log.Printf("market daemon serving health on %s", listener.Addr())

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return nil
	}
}
