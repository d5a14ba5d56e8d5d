package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/qualifier/internal/api"
	"github.com/MikeSquared-Agency/qualifier/internal/config"
	"github.com/MikeSquared-Agency/qualifier/internal/hermes"
	"github.com/MikeSquared-Agency/qualifier/internal/kafka"
	"github.com/MikeSquared-Agency/qualifier/internal/processor"
	"github.com/MikeSquared-Agency/qualifier/internal/question"
	"github.com/MikeSquared-Agency/qualifier/internal/session"
	"github.com/MikeSquared-Agency/qualifier/internal/slack"
	"github.com/MikeSquared-Agency/qualifier/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the qualification service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel, os.Stdout)
	logger := slog.Default()

	logger.Info("qualifier starting", "port", cfg.Port, "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scorer, ext, err := engines(cmd, cfg, logger)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	policy, err := session.ParseMergePolicy(cfg.MergePolicy)
	if err != nil {
		return err
	}
	logger.Info("rules loaded",
		"thresholds", scorer.Thresholds().Name,
		"merge_policy", policy.String(),
	)

	// Database
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("database connected")

	var questions processor.QuestionSource = db
	if cfg.QuestionsFile != "" {
		questions = question.FileSource{Path: cfg.QuestionsFile}
		logger.Info("questions loaded from file", "path", cfg.QuestionsFile)
	}

	// Event broker
	var (
		pub       processor.Publisher
		subscribe func(subject string, handler func(string, []byte)) error
	)
	switch cfg.EventBroker {
	case "nats":
		hc, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer hc.Close()
		logger.Info("NATS connected", "url", cfg.NatsURL)
		pub = hc
		subscribe = hc.Subscribe
	case "kafka":
		producer := kafka.NewProducer(cfg.KafkaBrokers, logger)
		defer producer.Close()
		pub = producer
		subscribe = func(subject string, handler func(string, []byte)) error {
			consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupPrefix, subject, logger)
			go func() {
				defer consumer.Close()
				if err := consumer.Run(ctx, handler); err != nil {
					logger.Error("kafka consumer stopped", "topic", subject, "error", err)
				}
			}()
			return nil
		}
		logger.Info("kafka configured", "brokers", cfg.KafkaBrokers)
	case "none", "":
		logger.Warn("no event broker configured, events are disabled")
	default:
		return fmt.Errorf("unknown event broker %q", cfg.EventBroker)
	}

	proc := processor.New(questions, scorer, ext, db, pub, policy, logger)

	// Slack is optional; without it hot leads only go out as events.
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		proc.SetNotifier(slack.NewPoster(cfg.SlackToken, cfg.SlackChannel, logger))
		logger.Info("slack poster ready", "channel", cfg.SlackChannel)
	}

	if subscribe != nil {
		if err := subscribe(hermes.SubjectTranscriptStored, proc.HandleTranscriptStored); err != nil {
			return fmt.Errorf("subscribe to transcript events: %w", err)
		}
	}

	go sweepSessions(ctx, proc, cfg.SessionTTL)

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, proc, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	if pub != nil {
		if err := pub.Publish(hermes.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
			"version":   version,
		}); err != nil {
			logger.Warn("failed to publish registration", "error", err)
		}
	}

	logger.Info("qualifier ready", "port", cfg.Port, "broker", cfg.EventBroker)

	// Graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", "error", err)
	}
	logger.Info("qualifier stopped", "open_sessions", proc.ActiveSessions())
	return nil
}

func sweepSessions(ctx context.Context, proc *processor.Processor, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			proc.Sweep(ttl)
		}
	}
}
