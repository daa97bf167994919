// Package config resolves the service's environment knobs, grounded on
// internal/config/config.go's viper+godotenv load ordering:
// .env files first, then defaults, then explicit unprefixed environment
// overrides (DATA_DIR, QDRANT_URL, ...), then an optional config file.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every environment knob the service reads at startup.
type Config struct {
	DataDir               string `mapstructure:"data_dir"`
	TmpDir                string `mapstructure:"tmp_dir"`
	QdrantURL             string `mapstructure:"qdrant_url"`
	QdrantCollectionName  string `mapstructure:"qdrant_collection_name"`
	ModelName             string `mapstructure:"model_name"`
	WorkerHost            string `mapstructure:"worker_host"`
	WorkerPort            int    `mapstructure:"worker_port"`
}

// Default returns the built-in defaults, applied before file/env overrides.
func Default() *Config {
	return &Config{
		DataDir:              "./data",
		TmpDir:               os.TempDir(),
		QdrantURL:            "http://localhost:6333",
		QdrantCollectionName: "code",
		ModelName:            "local-hashing-trick-v1",
		WorkerHost:           "0.0.0.0",
		WorkerPort:           8080,
	}
}

// Load resolves Config from .env files, then the unprefixed environment
// variables (DATA_DIR, QDRANT_URL, ...), then an optional config file at
// path (searched in standard locations when path is empty).
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("tmp_dir", cfg.TmpDir)
	v.SetDefault("qdrant_url", cfg.QdrantURL)
	v.SetDefault("qdrant_collection_name", cfg.QdrantCollectionName)
	v.SetDefault("model_name", cfg.ModelName)
	v.SetDefault("worker_host", cfg.WorkerHost)
	v.SetDefault("worker_port", cfg.WorkerPort)

	// The knobs are named unprefixed (DATA_DIR, QDRANT_URL, ...); bind each
	// explicitly rather than relying on AutomaticEnv's prefix convention,
	// which would otherwise require a CODERAG_ prefix.
	for key, env := range map[string]string{
		"data_dir": "DATA_DIR", "tmp_dir": "TMP_DIR", "qdrant_url": "QDRANT_URL",
		"qdrant_collection_name": "QDRANT_COLLECTION_NAME", "model_name": "MODEL_NAME",
		"worker_host": "WORKER_HOST", "worker_port": "WORKER_PORT",
	} {
		_ = v.BindEnv(key, env)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("coderag")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".coderag"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence; a missing file is
// not an error, it's simply skipped.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}
