package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smsledger/internal/backend"
	"smsledger/internal/cli"
	"smsledger/internal/command"
	"smsledger/internal/dispatch"
	apphttp "smsledger/internal/http"
	"smsledger/internal/log"
	"smsledger/internal/verify"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting smsledger")

	cfg := cli.LoadAndValidateConfig(logger)

	// Choose data backend (default: memory).
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Category synonym table: built-in defaults unless a rules file is
	// configured.
	synonyms, err := command.LoadSynonyms(cfg.CategoryRulesPath)
	if err != nil {
		logger.Error("Failed to load category rules", log.FieldError, err, "path", cfg.CategoryRulesPath)
		os.Exit(1)
	}
	parser := command.NewParser(synonyms)
	dispatcher := dispatch.New(result.Backend, logger)

	codes := verify.NewMemoryStore()
	codes.StartCleanup(time.Minute)
	verifier := verify.NewService(codes, result.Backend, cfg.VerifyCodeTTL, logger)

	srv := apphttp.NewServer(":"+cfg.Port, result.Backend, parser, dispatcher, verifier, cfg.RateLimitPerMinute, logger)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		codes.Stop()
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}
		cancel()
	}()

	logger.Info("Starting smsledger server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
