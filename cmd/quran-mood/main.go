package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quran-mood-gateway/internal/cache"
	"quran-mood-gateway/internal/config"
	"quran-mood-gateway/internal/graphql"
	"quran-mood-gateway/internal/handlers"
	"quran-mood-gateway/internal/httpserver"
	"quran-mood-gateway/internal/llm"
	"quran-mood-gateway/internal/metrics"
	"quran-mood-gateway/internal/quran"
	"quran-mood-gateway/internal/ratelimit"
	"quran-mood-gateway/internal/verses"
	"quran-mood-gateway/pkg/logging/logging"
)

var rootCmd = &cobra.Command{
	Use:          "quran-mood",
	Short:        "Suggests Quran verses for a described mood",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (GraphQL and REST)",
	RunE:  runServe,
}

var translationsCmd = &cobra.Command{
	Use:   "translations",
	Short: "List translation resources offered by the content API",
	RunE:  runTranslations,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Server port (overrides PORT)")
	serveCmd.Flags().String("cache-backend", "", "memory or redis (overrides CACHE_BACKEND)")

	rootCmd.AddCommand(serveCmd, translationsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.NewLogger(logging.Options{
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Service: "quran-mood-gateway",
	})
}

func newQuranClient(cfg config.Config, logger *zap.Logger) (*quran.Client, error) {
	return quran.NewClient(quran.Config{
		ClientID:     cfg.QuranClientID,
		ClientSecret: cfg.QuranClientSecret,
		TokenURL:     cfg.QuranOAuthURL,
		APIURL:       cfg.QuranAPIURL,
		Timeout:      cfg.QuranTimeout,
		CacheSize:    cfg.ContentCacheSize,
	}, logger)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ----- Config -----
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if backend, _ := cmd.Flags().GetString("cache-backend"); backend != "" {
		cfg.CacheBackend = backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	translations, err := verses.ParseTranslations(cfg.QuranTranslations)
	if err != nil {
		return fmt.Errorf("QURAN_TRANSLATIONS: %w", err)
	}

	// ----- Logger -----
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// ----- Metrics -----
	metrics.Register()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("cache_version", cfg.CacheVersion),
		zap.String("llm_provider", cfg.LLMProvider),
		zap.Bool("llm_configured", cfg.LLMConfigured()),
		zap.String("quran_api_url", cfg.QuranAPIURL),
		zap.Duration("rate_limit_window", cfg.RateLimitWindow),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(cmd.Context()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
	}

	// ----- Response cache + rate limiter -----
	const keyPrefix = "quran-mood"
	store := cache.NewStore(cache.Config{
		Backend:    cfg.CacheBackend,
		MaxEntries: cfg.ResponseCacheSize,
		Prefix:     keyPrefix,
	}, redisClient)
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	moods := cache.NewMoodCache(cache.NewLoggingStore(store), cfg.ResponseCacheTTL, cfg.CacheVersion)

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient, keyPrefix, cfg.RateLimitWindow)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitWindow, cfg.RateLimitMaxClients)
	}

	// ----- LLM client -----
	// Without a key the server still starts; mood queries answer "not configured".
	var llmClient llm.Client
	if cfg.LLMConfigured() {
		c, err := llm.NewClient(cmd.Context(), llm.Config{
			Provider:        cfg.LLMProvider,
			APIKey:          cfg.LLMAPIKey,
			BaseURL:         cfg.LLMBaseURL,
			Model:           cfg.LLMModel,
			UpstreamTimeout: cfg.LLMTimeout,
		}, logger)
		if err != nil {
			return err
		}
		if closer, ok := c.(interface{ Close() error }); ok {
			defer closer.Close()
		}
		llmClient = c
	} else {
		logger.Warn("no language model credential set; mood queries will fail until LLM_API_KEY is configured")
	}

	// ----- Quran content client -----
	quranClient, err := newQuranClient(cfg, logger)
	if err != nil {
		return err
	}

	svc := verses.NewService(
		limiter,
		moods,
		verses.NewResolver(llmClient, verses.ResolverConfig{
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		}),
		verses.NewContentFetcher(quranClient, verses.FetcherConfig{
			Translations: translations,
			Concurrency:  cfg.FetchConcurrency,
			Timeout:      cfg.QuranTimeout,
		}),
	)

	// ----- Handlers -----
	graphqlHandler, err := graphql.NewHandler(svc)
	if err != nil {
		return err
	}
	versesHandler := handlers.NewVersesHandler(svc)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, httpserver.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.LLMTimeout + cfg.QuranTimeout + 5*time.Second,
	}, versesHandler, graphqlHandler)

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.LLMTimeout + cfg.QuranTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting server", zap.String("addr", srv.Addr))

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		logger.Error("server error", zap.Error(err))
		return err
	case <-stop:
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

func runTranslations(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, err := newQuranClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.QuranTimeout)
	defer cancel()

	res, err := client.TranslationResources(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLANGUAGE\tNAME\tAUTHOR")
	for _, t := range res.Translations {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.LanguageName, t.Name, t.AuthorName)
	}
	return tw.Flush()
}
