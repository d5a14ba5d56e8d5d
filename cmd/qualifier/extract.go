package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/qualifier/internal/config"
	"github.com/MikeSquared-Agency/qualifier/internal/question"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract answers from a call transcript and print them as JSON",
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().String("questions", "", "YAML question file")
	extractCmd.Flags().String("transcript", "-", "transcript file, or - for stdin")
	_ = extractCmd.MarkFlagRequired("questions")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel, os.Stderr)

	_, ext, err := engines(cmd, cfg, slog.Default())
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

	tPath, _ := cmd.Flags().GetString("transcript")
	var data []byte
	if tPath == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(tPath)
	}
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	return printJSON(cmd, ext.Extract(set.Questions(), string(data)))
}
