package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/menta2k/agentic-detect/internal/config"
	"github.com/menta2k/agentic-detect/internal/server"
	"github.com/menta2k/agentic-detect/pkg/landing"
)

func main() {
	var configPath, addr, key string
	flag.StringVar(&configPath, "config", "config.json", "path to the JSON config file")
	flag.StringVar(&addr, "addr", "", "listen address, overrides the config")
	flag.StringVar(&key, "key", "", "API credential, overrides file and environment")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", configPath), zap.Error(err))
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	credential := cfg.ResolveCredential(key)
	if credential == "" {
		logger.Warn("no API credential configured; detect requests will be rejected",
			zap.String("credential_file", cfg.Detector.CredentialFile),
			zap.String("credential_env", cfg.Detector.CredentialEnv))
	}

	client := landing.NewClientWithTimeout(
		cfg.Detector.Endpoint,
		credential,
		time.Duration(cfg.Detector.TimeoutSeconds)*time.Second,
	)
	srv := server.New(cfg, client, credential, logger)

	logger.Info("agentic-detect server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("strategy", cfg.Detector.Strategy),
		zap.String("archive_variant", cfg.Output.ArchiveVariant))

	if err := http.ListenAndServe(cfg.Server.Addr, srv.Handler()); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
