package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq" // Postgres driver for the primary and reference stores
	"github.com/spf13/viper"

	"github.com/partstream/fitment/internal/engine"
	"github.com/partstream/fitment/internal/model"
	"github.com/partstream/fitment/internal/parse"
	"github.com/partstream/fitment/internal/refdata"
	"github.com/partstream/fitment/internal/store"
	"github.com/partstream/fitment/internal/worker"
)

// loadConfig merges defaults with config file and environment overrides
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("database.dsn"); v != "" {
		cfg.Database.DSN = v
	}
	if v := viper.GetString("database.driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := viper.GetString("reference.vehicleDsn"); v != "" {
		cfg.Reference.VehicleDSN = v
	}
	if v := viper.GetString("reference.positionDsn"); v != "" {
		cfg.Reference.PositionDSN = v
	}
	if v := viper.GetString("reference.driver"); v != "" {
		cfg.Reference.Driver = v
	}
	if v := viper.GetDuration("reference.queryTimeout"); v > 0 {
		cfg.Reference.QueryTimeout = v
	}
	if v := viper.GetFloat64("reference.requestsPerSecond"); v > 0 {
		cfg.Reference.RequestsPerSecond = v
	}
	if v := viper.GetInt("caches.maxEntries"); v > 0 {
		cfg.Caches.MaxEntries = v
	}
	if v := viper.GetInt("concurrency.workers"); v > 0 {
		cfg.Concurrency.Workers = v
	}
	if v := viper.GetString("suggest.apiKey"); v != "" {
		cfg.Suggest.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Suggest.APIKey == "" {
		cfg.Suggest.APIKey = v
	}
	cfg.Output.Verbose = viper.GetBool("verbose")

	// Reference datasets default to the primary store in small deployments
	if cfg.Reference.VehicleDSN == "" {
		cfg.Reference.VehicleDSN = cfg.Database.DSN
	}
	if cfg.Reference.PositionDSN == "" {
		cfg.Reference.PositionDSN = cfg.Database.DSN
	}

	return cfg
}

// deps bundles everything a command needs against the opened connections
type deps struct {
	Engine   *engine.Engine
	Mappings *store.MappingStore
	Sink     *store.ResultSink
	Close    func()
}

// openDeps opens the primary and reference connections, wires the engine and
// loads the mapping snapshot from the store. Close releases every connection.
func openDeps(ctx context.Context, cfg *model.Config) (*deps, error) {
	primary, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open primary store: %w", err)
	}

	vehicleDB, err := sql.Open(cfg.Reference.Driver, cfg.Reference.VehicleDSN)
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("open vehicle reference: %w", err)
	}

	positionDB, err := sql.Open(cfg.Reference.Driver, cfg.Reference.PositionDSN)
	if err != nil {
		_ = primary.Close()
		_ = vehicleDB.Close()
		return nil, fmt.Errorf("open position reference: %w", err)
	}

	cleanup := func() {
		_ = primary.Close()
		_ = vehicleDB.Close()
		_ = positionDB.Close()
	}

	limiter := worker.NewLimiter(cfg.Reference.RequestsPerSecond, cfg.Reference.Burst)
	vehicles := refdata.NewSQLVehicleSource(vehicleDB, limiter, cfg.Reference.QueryTimeout)
	positions := refdata.NewCachedPositionSource(
		refdata.NewSQLPositionSource(positionDB, limiter, cfg.Reference.QueryTimeout),
		cfg.Caches.MaxEntries,
	)
	mappings := store.NewMappingStore(primary)

	eng := engine.New(engine.Options{
		Vehicles:    vehicles,
		Positions:   positions,
		Mappings:    mappings,
		Parser:      parse.NewParser(cfg.Parser.MinYear, cfg.Parser.MaxYearsAhead),
		Concurrency: cfg.Concurrency.Workers,
	})

	if err := eng.ConfigureFromStore(ctx); err != nil {
		cleanup()
		return nil, err
	}

	return &deps{
		Engine:   eng,
		Mappings: mappings,
		Sink:     store.NewResultSink(primary),
		Close:    cleanup,
	}, nil
}

// storeDeps is the slimmer wiring for commands that only touch the mapping
// table
type storeDeps struct {
	Mappings *store.MappingStore
	Close    func()
}

// openStoreOnly opens just the primary store connection
func openStoreOnly(ctx context.Context) (*storeDeps, error) {
	cfg := loadConfig()

	primary, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open primary store: %w", err)
	}
	if err := primary.PingContext(ctx); err != nil {
		_ = primary.Close()
		return nil, &model.DatabaseError{Op: "ping primary store", Cause: err}
	}

	return &storeDeps{
		Mappings: store.NewMappingStore(primary),
		Close:    func() { _ = primary.Close() },
	}, nil
}

// printResults renders a search trace to stdout
func printResults(rawText string, results []model.ValidationResult) {
	fmt.Printf("%s\n", rawText)
	for _, r := range results {
		marker := " "
		switch r.Status {
		case model.StatusValid:
			marker = "✓"
		case model.StatusWarning:
			marker = "!"
		case model.StatusError:
			marker = "✗"
		}
		if r.Candidate.Year == 0 {
			fmt.Printf("  %s %-7s %s\n", marker, r.Status, r.Message)
			continue
		}
		fmt.Printf("  %s %-7s %d %s %s [%s] - %s\n",
			marker, r.Status, r.Candidate.Year, r.Candidate.Make, r.Candidate.Model,
			r.Candidate.Positions.String(), r.Message)
	}
}
