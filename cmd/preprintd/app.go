// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/preprintlab/preprintd/internal/generate"
	"github.com/preprintlab/preprintd/internal/pipeline"
	"github.com/preprintlab/preprintd/internal/search"
	"github.com/preprintlab/preprintd/internal/secrets"
	"github.com/preprintlab/preprintd/internal/store"
	"github.com/preprintlab/preprintd/pkg/types"
)

const defaultUserAgent = "preprintd/0.1"

// setConfigDefaults registers the config keys and their defaults. Every
// key can come from preprintd.yaml or a PREPRINTD_* environment
// variable.
func setConfigDefaults() {
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("scratch_dir", "")
	viper.SetDefault("secrets_dir", ".secrets/")
	viper.SetDefault("http_timeout", "60s")
	viper.SetDefault("generation_model", "")
	viper.SetDefault("generation_timeout", "120s")
	viper.SetDefault("search_max_results", 30)
	viper.SetDefault("search_scan_limit", 200)
	viper.SetDefault("search_category", "cs.*")
	viper.SetDefault("listen_addr", ":8080")
}

// appConfig assembles the pipeline configuration from viper.
func appConfig() types.PipelineConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http_timeout"),
		UserAgent: defaultUserAgent,
	}
	dataDir := viper.GetString("data_dir")
	if flagDir, _ := rootCmd.PersistentFlags().GetString("data-dir"); flagDir != "" {
		dataDir = flagDir
	}

	return types.PipelineConfig{
		Resolver: types.ResolverConfig{HTTPConfig: httpCfg},
		Fetcher: types.FetcherConfig{
			HTTPConfig: httpCfg,
			ScratchDir: viper.GetString("scratch_dir"),
		},
		Generator: types.GeneratorConfig{
			Model:   viper.GetString("generation_model"),
			APIKey:  secrets.GeminiAPIKey(viper.GetString("secrets_dir")),
			Timeout: viper.GetDuration("generation_timeout"),
		},
		Store: types.StoreConfig{DataDir: dataDir},
		Search: types.SearchConfig{
			HTTPConfig: httpCfg,
			MaxResults: viper.GetInt("search_max_results"),
			ScanLimit:  viper.GetInt("search_scan_limit"),
			Category:   viper.GetString("search_category"),
		},
		Server: types.ServerConfig{Addr: viper.GetString("listen_addr")},
	}
}

// app bundles the wired components behind one Close.
type app struct {
	cfg      types.PipelineConfig
	store    *store.Store
	pipeline *pipeline.Pipeline
	search   *search.Client
}

// newApp opens the store and wires the pipeline and search client.
func newApp() (*app, error) {
	cfg := appConfig()

	if err := os.MkdirAll(cfg.Store.DataDir, 0o755); err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.Store.DataDir)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.Resolver.Timeout}
	genTimeout := cfg.Generator.Timeout
	if genTimeout == 0 {
		genTimeout = 120 * time.Second
	}
	backend := &generate.GeminiBackend{
		APIKey: cfg.Generator.APIKey,
		Model:  cfg.Generator.Model,
		Client: &http.Client{Timeout: genTimeout},
	}

	return &app{
		cfg:      cfg,
		store:    s,
		pipeline: pipeline.New(s, client, backend, cfg, os.Stdout),
		search:   search.New(client, backend, cfg.Search),
	}, nil
}

func (a *app) Close() {
	a.pipeline.WaitPrewarm()
	a.store.Close()
}
