package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/qualifier/internal/config"
	"github.com/MikeSquared-Agency/qualifier/internal/question"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a set of answers and print the result as JSON",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().String("questions", "", "YAML question file")
	scoreCmd.Flags().String("answers", "", "JSON object of question id to answer")
	_ = scoreCmd.MarkFlagRequired("questions")
	_ = scoreCmd.MarkFlagRequired("answers")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel, os.Stderr)

	scorer, _, err := engines(cmd, cfg, slog.Default())
	if err != nil {
		return err
	}

	qPath, _ := cmd.Flags().GetString("questions")
	qs, err := question.LoadFile(qPath)
	if err != nil {
		return err
	}
	set, err := question.NewSet(qs)
	if err != nil {
		return fmt.Errorf("question configuration: %w", err)
	}

	aPath, _ := cmd.Flags().GetString("answers")
	data, err := os.ReadFile(aPath)
	if err != nil {
		return fmt.Errorf("read answers: %w", err)
	}
	var answers question.Answers
	if err := json.Unmarshal(data, &answers); err != nil {
		return fmt.Errorf("parse answers: %w", err)
	}

	return printJSON(cmd, scorer.Score(set.Questions(), answers))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
