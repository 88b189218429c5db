package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mood_recipe_server/config"
	"mood_recipe_server/generator"
	"mood_recipe_server/geo"
	"mood_recipe_server/server"
	"mood_recipe_server/store"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	addr := flag.String("addr", "", "http listen address (overrides config.server_addr and PORT)")
	verbose := flag.Bool("v", false, "enable info logs")
	flag.Parse()

	if err := run(*configPath, *addr, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, addr string, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := buildLLM(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	if c, ok := llm.(io.Closer); ok {
		defer c.Close()
	}
	agent, err := generator.NewAgent(llm, logger)
	if err != nil {
		return err
	}
	st, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Generator:      agent,
		Store:          st,
		Geo:            geo.New(cfg.IPInfo.BaseURL, cfg.IPInfo.Token, cfg.IPInfo.Timeout),
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}

	listen := cfg.ServerAddr
	if addr != "" {
		listen = addr
	}
	if listen == "" {
		listen = ":8080"
	}
	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[server] starting web server",
			zap.String("addr", listen), zap.String("llm", cfg.LLM.Provider), zap.String("store", cfg.Store))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// newLogger logs warnings and errors only unless -v is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

func buildLLM(ctx context.Context, cfg config.LLMConfig) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
	}
	switch cfg.Provider {
	case "gemini":
		return generator.NewGeminiLLM(ctx, settings)
	case "openai", "deepseek":
		// DeepSeek 走 OpenAI 兼容接口；base_url 已在配置校验中保证。
		return generator.NewOpenAILLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

func buildStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.Store == config.StoreMemory {
		return store.NewMemory(), nil
	}
	creds, err := cfg.Firebase.Credentials()
	if err != nil {
		return nil, err
	}
	return store.NewFirebase(ctx, store.FirebaseOptions{
		DatabaseURL:     cfg.Firebase.DatabaseURL,
		CredentialsJSON: creds,
		CredentialsFile: cfg.Firebase.CredentialsFile,
	})
}
