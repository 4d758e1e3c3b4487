package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"equity_insight/pkg/api/analysis"
	"equity_insight/pkg/api/snapshots"
	"equity_insight/pkg/api/valuation"
	"equity_insight/pkg/core/store"
	corevaluation "equity_insight/pkg/core/valuation"
)

// serverConfig mirrors config/valuation.yaml. Missing fields keep the
// built-in defaults.
type serverConfig struct {
	Valuation corevaluation.Params `yaml:"valuation"`
}

func loadConfig(log zerolog.Logger) corevaluation.Params {
	params := corevaluation.DefaultParams()
	data, err := os.ReadFile("config/valuation.yaml")
	if err != nil {
		log.Warn().Err(err).Msg("no valuation config, using defaults")
		return params
	}
	cfg := serverConfig{Valuation: params}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Warn().Err(err).Msg("bad valuation config, using defaults")
		return params
	}
	if err := cfg.Valuation.Validate(); err != nil {
		log.Warn().Err(err).Msg("invalid valuation config, using defaults")
		return params
	}
	return cfg.Valuation
}

func main() {
	// Load environment variables
	godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	params := loadConfig(log)

	// Postgres is optional; the vault falls back to file storage.
	ctx := context.Background()
	if err := store.InitDB(ctx); err != nil {
		log.Warn().Err(err).Msg("database unavailable, vault using file storage")
	} else {
		defer store.Close()
	}
	vault := store.NewVault(store.GetPool(), os.Getenv("SNAPSHOT_DIR"))

	analysis.InitHandler(vault, log)
	valuation.InitHandler(vault, params, log)
	snapshots.InitHandler(vault, log)

	// Analysis endpoints
	http.HandleFunc("/api/analysis/report", analysis.HandleReport)
	http.HandleFunc("/api/analysis/compare", analysis.HandleCompare)

	// Valuation endpoints
	http.HandleFunc("/api/valuation/report", valuation.HandleReport)

	// Snapshot vault endpoints
	http.HandleFunc("/api/snapshots", snapshots.HandleUpload)
	http.HandleFunc("/api/snapshots/get", snapshots.HandleGet)
	http.HandleFunc("/api/snapshots/list", snapshots.HandleList)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info().Str("port", port).Msg("API server starting")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}
