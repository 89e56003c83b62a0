package main

import (
	"log/slog"
	"os"

	"github.com/mstrand/wavesearch/internal/adapters"
	"github.com/mstrand/wavesearch/internal/pipeline"
	"github.com/mstrand/wavesearch/pkg/config/env"
)

const defaultEnginesPath = "configs/engines.yaml"

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type WaveSearchConfig struct {
	Engines  *adapters.Config
	Pipeline pipeline.Config
}

func (ac *AppConfig) Load() (*WaveSearchConfig, error) {
	err := env.LoadDotEnv(ac.ENV, "cmd/wavesearch-api/.env")
	if err != nil {
		slog.Info("Failed to load .env, continuing with existing environment variables", "error", err)
	}

	enginesPath := os.Getenv("ENGINES_CONFIG")
	if enginesPath == "" {
		enginesPath = defaultEnginesPath
	}

	enginesCfg, err := adapters.LoadConfig(enginesPath)
	if err != nil {
		slog.Error("Failed to load engines configuration", "path", enginesPath, "error", err)
		return nil, err
	}

	return &WaveSearchConfig{
		Engines:  enginesCfg,
		Pipeline: pipeline.DefaultConfig(),
	}, nil
}
