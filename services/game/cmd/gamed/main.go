package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stickerhunt/pkg/bus"
	"stickerhunt/pkg/db"
	gos3 "stickerhunt/pkg/s3"
	"stickerhunt/pkg/telemetry"
	"stickerhunt/services/game"
	"stickerhunt/services/game/internal/config"
)

const serviceName = "stickerhunt-game"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gamed",
		Short:         "Sticker hunt game session service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSyncCommand())
	cmd.AddCommand(newEventsCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the game HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func newSyncCommand() *cobra.Command {
	var uploader string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a one-shot catalog sync against the sticker bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runSync(ctx, uploader)
		},
	}

	cmd.Flags().StringVar(&uploader, "uploader", "", "User id to attribute newly discovered stickers to")
	_ = cmd.MarkFlagRequired("uploader")
	return cmd
}

func newEventsCommand() *cobra.Command {
	var durable string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail game lifecycle events from the bus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tailEvents(durable)
		},
	}

	cmd.Flags().StringVar(&durable, "durable", "gamed-events", "Durable consumer name prefix")
	return cmd
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	shutdownTelemetry, traceMiddleware, _, err := telemetry.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	pool, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	store, err := game.NewPgStore(pool)
	if err != nil {
		return err
	}

	s3Client, err := gos3.NewClientFromEnv()
	if err != nil {
		return fmt.Errorf("s3 client: %w", err)
	}

	var eventBus *bus.Bus
	if cfg.NATSURL != "" {
		eventBus, err = bus.New(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer eventBus.Close()
	}

	var identity game.IdentityProvider
	if cfg.AuthEndpoint != "" {
		identity = game.NewHTTPIdentityProvider(cfg.AuthEndpoint)
	}

	api, err := game.NewAPI(game.APIOptions{
		Store:     store,
		Objects:   game.S3Objects{Client: s3Client, Prefix: cfg.StickerPrefix},
		Identity:  identity,
		Publisher: game.NewPublisher(eventBus, log.Logger),
		Logger:    log.Logger,
	})
	if err != nil {
		return err
	}

	handler := traceMiddleware(api.Routes(game.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		Ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(pingCtx, pool)
		},
	}))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting stickerhunt-game")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	log.Info().Msg("stickerhunt-game stopped")
	return nil
}

func runSync(ctx context.Context, uploader string) error {
	_ = godotenv.Load()

	uploaderID, err := uuid.Parse(uploader)
	if err != nil {
		return fmt.Errorf("invalid uploader id: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	store, err := game.NewPgStore(pool)
	if err != nil {
		return err
	}

	s3Client, err := gos3.NewClientFromEnv()
	if err != nil {
		return fmt.Errorf("s3 client: %w", err)
	}

	syncer := game.NewCatalogSyncer(store, game.S3Objects{Client: s3Client, Prefix: cfg.StickerPrefix})
	result, err := syncer.Sync(ctx, uploaderID)
	if err != nil {
		return err
	}

	fmt.Printf("catalog sync: %d stored, %d eligible, %d known, %d added\n",
		result.TotalStored, result.Eligible, result.AlreadyKnown, result.NewlyAdded)
	return nil
}

func tailEvents(durable string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required")
	}

	eventBus, err := bus.New(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer eventBus.Close()

	subjects := []string{
		game.SubjectGameStarted,
		game.SubjectGameFinished,
		game.SubjectPublished,
	}
	for _, subj := range subjects {
		subject := subj
		// Durable names may not contain subject separators.
		name := durable + "-" + strings.ReplaceAll(subject, ".", "-")
		sub, err := eventBus.Subscribe(ctx, subject, name, func(_ context.Context, data []byte) error {
			log.Info().Str("subject", subject).RawJSON("event", data).Msg("event")
			return nil
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		defer sub.Close()
	}

	log.Info().Str("nats_url", cfg.NATSURL).Msg("tailing game events")
	<-ctx.Done()
	return nil
}
