package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/qualifier/internal/config"
	"github.com/MikeSquared-Agency/qualifier/internal/extractor"
	"github.com/MikeSquared-Agency/qualifier/internal/scoring"
)

// engines builds the scorer and extractor from config, with --rules and
// --thresholds taking precedence over the environment.
func engines(cmd *cobra.Command, cfg config.Config, logger *slog.Logger) (*scoring.Engine, *extractor.Extractor, error) {
	rulesFile := cfg.RulesFile
	if v, _ := cmd.Flags().GetString("rules"); v != "" {
		rulesFile = v
	}
	thresholds := cfg.Thresholds
	if v, _ := cmd.Flags().GetString("thresholds"); v != "" {
		thresholds = v
	}

	rules, err := config.LoadRules(rulesFile, thresholds)
	if err != nil {
		return nil, nil, err
	}
	scorer, err := scoring.New(rules.Scoring)
	if err != nil {
		return nil, nil, err
	}
	ext, err := extractor.New(rules.Extraction, logger)
	if err != nil {
		return nil, nil, err
	}
	return scorer, ext, nil
}
