package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/Juggy247/Security-Scanner-Project/ml"
	"github.com/Juggy247/Security-Scanner-Project/registry"
	"github.com/Juggy247/Security-Scanner-Project/scanner"
)

// openStore builds the registry backend named in config. Callers own Close.
func openStore(ctx context.Context) (registry.Store, error) {
	switch backend := viper.GetString("registry.backend"); backend {
	case "memory":
		return registry.NewSeededMemory(), nil
	case "postgres":
		dsn := viper.GetString("registry.dsn")
		if dsn == "" {
			return nil, fmt.Errorf("registry.dsn is required for the postgres backend")
		}
		return registry.NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown registry backend %q", backend)
	}
}

func buildScanner(store registry.Store) (*scanner.Scanner, error) {
	fetchTimeout := viper.GetDuration("fetch.timeout")

	var fetcher scanner.Fetcher
	switch renderer := viper.GetString("fetch.renderer"); renderer {
	case "http":
		fetcher = scanner.NewHTTPFetcher(fetchTimeout, viper.GetFloat64("fetch.rate_limit"))
	case "chrome":
		fetcher = scanner.NewRenderedFetcher(fetchTimeout)
	default:
		return nil, fmt.Errorf("unknown fetch renderer %q", renderer)
	}

	checks := scanner.NewChecks(
		registry.FromStore(store),
		&scanner.WhoisAgeLookup{Timeout: fetchTimeout},
		&scanner.DialTLSProber{},
		logger,
	)

	cfg := scanner.Config{
		BypassRobots: viper.GetBool("scan.bypass_robots"),
		CheckTimeout: viper.GetDuration("scan.check_timeout"),
		ScanBudget:   viper.GetDuration("scan.budget"),
		WorkerLimit:  viper.GetInt("scan.worker_limit"),
	}
	return scanner.New(cfg, fetcher, checks, logger), nil
}

// buildClassifier returns nil when no endpoint is configured.
func buildClassifier() ml.Classifier {
	endpoint := viper.GetString("ml.endpoint")
	if endpoint == "" {
		return nil
	}
	return ml.NewHTTPClassifier(endpoint, viper.GetDuration("fetch.timeout"))
}
