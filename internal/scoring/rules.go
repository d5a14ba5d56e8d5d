package scoring

import "fmt"

// Status is the qualitative lead temperature derived from a score.
type Status string

const (
	StatusHot  Status = "hot"
	StatusWarm Status = "warm"
	StatusCold Status = "cold"
)

// Tier maps an inclusive lower score bound to a status and next action.
type Tier struct {
	Status     Status `yaml:"status" json:"status"`
	MinScore   int    `yaml:"min_score" json:"min_score"`
	NextAction string `yaml:"next_action" json:"next_action"`
	FollowUp   bool   `yaml:"follow_up" json:"follow_up"`
}

// Thresholds is an ordered (highest MinScore first) tier table.
type Thresholds struct {
	Name       string `yaml:"name" json:"name"`
	HotDealMin int    `yaml:"hot_deal_min" json:"hot_deal_min"`
	Tiers      []Tier `yaml:"tiers" json:"tiers"`
}

// DefaultHotDealMin is the score at which a lead counts as a hot deal.
const DefaultHotDealMin = 80

var coldTier = Tier{Status: StatusCold, MinScore: 0, NextAction: "Archive lead"}

// BasicThresholds is the 70/40 table used by the standard qualification flow.
func BasicThresholds() Thresholds {
	return Thresholds{
		Name:       "basic",
		HotDealMin: DefaultHotDealMin,
		Tiers: []Tier{
			{Status: StatusHot, MinScore: 70, NextAction: "Schedule demo meeting", FollowUp: true},
			{Status: StatusWarm, MinScore: 40, NextAction: "Follow up in 1 week", FollowUp: true},
			coldTier,
		},
	}
}

// EnhancedThresholds is the stricter 80/60 table.
func EnhancedThresholds() Thresholds {
	return Thresholds{
		Name:       "enhanced",
		HotDealMin: DefaultHotDealMin,
		Tiers: []Tier{
			{Status: StatusHot, MinScore: 80, NextAction: "Schedule demo meeting", FollowUp: true},
			{Status: StatusWarm, MinScore: 60, NextAction: "Follow up call", FollowUp: true},
			coldTier,
		},
	}
}

// ThresholdsByName resolves "basic" or "enhanced".
func ThresholdsByName(name string) (Thresholds, error) {
	switch name {
	case "", "basic":
		return BasicThresholds(), nil
	case "enhanced":
		return EnhancedThresholds(), nil
	default:
		return Thresholds{}, fmt.Errorf("unknown threshold table %q", name)
	}
}

// Validate checks that tiers are strictly descending and carry known statuses.
func (t Thresholds) Validate() error {
	if len(t.Tiers) == 0 {
		return fmt.Errorf("threshold table %q has no tiers", t.Name)
	}
	if t.HotDealMin < 1 || t.HotDealMin > 100 {
		return fmt.Errorf("threshold table %q: hot deal min %d out of range", t.Name, t.HotDealMin)
	}
	for i, tier := range t.Tiers {
		switch tier.Status {
		case StatusHot, StatusWarm, StatusCold:
		default:
			return fmt.Errorf("tier %d: unknown status %q", i, tier.Status)
		}
		if tier.MinScore < 0 || tier.MinScore > 100 {
			return fmt.Errorf("tier %d: min score %d out of range", i, tier.MinScore)
		}
		if i > 0 && tier.MinScore >= t.Tiers[i-1].MinScore {
			return fmt.Errorf("tier %d: min score %d not below %d", i, tier.MinScore, t.Tiers[i-1].MinScore)
		}
	}
	return nil
}

// Classify returns the first tier whose lower bound the score meets.
func (t Thresholds) Classify(score int) Tier {
	for _, tier := range t.Tiers {
		if score >= tier.MinScore {
			return tier
		}
	}
	return coldTier
}

// Rules is the injectable keyword and threshold configuration.
type Rules struct {
	PositiveKeywords []string   `yaml:"positive_keywords"`
	NegativeKeywords []string   `yaml:"negative_keywords"`
	Thresholds       Thresholds `yaml:"thresholds"`
}

// DefaultRules returns the built-in English keyword lists with the basic table.
func DefaultRules() Rules {
	return Rules{
		PositiveKeywords: []string{
			"yes", "interested", "budget", "ready", "approved",
			"definitely", "looking for", "need", "urgent", "immediately",
		},
		NegativeKeywords: []string{
			"no", "not interested", "maybe", "unsure", "later",
			"thinking about it", "not sure", "not ready",
		},
		Thresholds: BasicThresholds(),
	}
}
