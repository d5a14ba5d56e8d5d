package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/qualifier/internal/extractor"
	"github.com/MikeSquared-Agency/qualifier/internal/scoring"
)

// Rules bundles the scoring and extraction configuration.
type Rules struct {
	Scoring    scoring.Rules
	Extraction extractor.Rules
}

// rulesFile mirrors the YAML layout. Omitted sections keep their defaults.
type rulesFile struct {
	Scoring *struct {
		PositiveKeywords []string        `yaml:"positive_keywords"`
		NegativeKeywords []string        `yaml:"negative_keywords"`
		Thresholds       *thresholdsFile `yaml:"thresholds"`
	} `yaml:"scoring"`
	Extraction *struct {
		Categories    []extractor.CategoryRule `yaml:"categories"`
		StopWords     []string                 `yaml:"stop_words"`
		MinKeywordLen *int                     `yaml:"min_keyword_len"`
	} `yaml:"extraction"`
}

// thresholdsFile distinguishes an omitted hot_deal_min from an explicit one.
type thresholdsFile struct {
	Name       string         `yaml:"name"`
	HotDealMin *int           `yaml:"hot_deal_min"`
	Tiers      []scoring.Tier `yaml:"tiers"`
}

func (t thresholdsFile) table() scoring.Thresholds {
	th := scoring.Thresholds{
		Name:       t.Name,
		HotDealMin: scoring.DefaultHotDealMin,
		Tiers:      t.Tiers,
	}
	if t.HotDealMin != nil {
		th.HotDealMin = *t.HotDealMin
	}
	return th
}

// LoadRules builds rules from the built-in defaults, the named threshold
// table, and an optional YAML file (path may be empty).
func LoadRules(path, thresholds string) (Rules, error) {
	table, err := scoring.ThresholdsByName(thresholds)
	if err != nil {
		return Rules{}, err
	}
	r := Rules{
		Scoring:    scoring.DefaultRules(),
		Extraction: extractor.DefaultRules(),
	}
	r.Scoring.Thresholds = table

	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}

	if s := f.Scoring; s != nil {
		if len(s.PositiveKeywords) > 0 {
			r.Scoring.PositiveKeywords = s.PositiveKeywords
		}
		if len(s.NegativeKeywords) > 0 {
			r.Scoring.NegativeKeywords = s.NegativeKeywords
		}
		if s.Thresholds != nil {
			r.Scoring.Thresholds = s.Thresholds.table()
		}
	}
	if e := f.Extraction; e != nil {
		if len(e.Categories) > 0 {
			r.Extraction.Categories = e.Categories
		}
		if len(e.StopWords) > 0 {
			r.Extraction.StopWords = e.StopWords
		}
		if e.MinKeywordLen != nil {
			r.Extraction.MinKeywordLen = *e.MinKeywordLen
		}
	}
	return r, nil
}
