package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/qualifier/internal/config"
	"github.com/MikeSquared-Agency/qualifier/internal/question"
	"github.com/MikeSquared-Agency/qualifier/internal/store"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage the stored question configuration",
}

var questionsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Validate a YAML question file and make it the stored configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionsImport,
}

func init() {
	questionsCmd.AddCommand(questionsImportCmd)
	rootCmd.AddCommand(questionsCmd)
}

func runQuestionsImport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel, os.Stderr)

	qs, err := question.LoadFile(args[0])
	if err != nil {
		return err
	}
	if _, err := question.NewSet(qs); err != nil {
		return fmt.Errorf("question configuration: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	ctx := context.Background()
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	if err := db.ReplaceQuestions(ctx, qs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d questions\n", len(qs))
	return nil
}
