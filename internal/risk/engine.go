// Package risk computes app privacy-risk assessments from permission flags,
// user-data presence, and domain breach counts. Scoring is pure arithmetic:
// no I/O, deterministic for a given config and input.
package risk

import "math"

// Assessment is the full score breakdown for one evaluation. Returned to the
// caller for transparency; only Normalized and the derived level persist.
type Assessment struct {
	RawScore       int `json:"rawScore"`
	SynergyPenalty int `json:"synergyPenalty"`
	URLModifier    int `json:"urlModifier"`
	TotalRaw       int `json:"totalRaw"`
	MaxPossible    int `json:"maxPossible"`
	Normalized     int `json:"normalized"`
	BreachCount    int `json:"breachCount"`
}

// Score evaluates permissions, user-data presence, and a breach count against
// the weight table. Factors missing from permissions count as false; factors
// missing from the weight table contribute nothing.
func Score(cfg *Config, permissions map[string]bool, hasEmail, hasPhone bool, breachCount int) Assessment {
	truth := make(map[string]bool, len(permissions)+2)
	for factor, on := range permissions {
		truth[factor] = on
	}
	truth[FactorUserEmail] = hasEmail
	truth[FactorUserPhoneNumber] = hasPhone

	rawScore := 0
	for factor, on := range truth {
		if !on {
			continue
		}
		rawScore += cfg.Weights[factor]
	}

	synergyPenalty := 0
	for _, rule := range cfg.Synergies {
		fired := true
		for _, factor := range rule.Factors {
			if !truth[factor] {
				fired = false
				break
			}
		}
		if fired {
			synergyPenalty += rule.Penalty
		}
	}

	if breachCount < 0 {
		breachCount = 0
	}
	urlModifier := breachCount * cfg.Breach.PerBreach
	if urlModifier > cfg.Breach.MaxModifier {
		urlModifier = cfg.Breach.MaxModifier
	}

	totalRaw := rawScore + synergyPenalty + urlModifier
	maxPossible := cfg.MaxPossible()

	normalized := 0
	if maxPossible > 0 {
		normalized = int(math.Round(float64(totalRaw) / float64(maxPossible) * 100))
	}
	// totalRaw <= maxPossible by construction (boolean-gated weights and a
	// pre-clamped modifier), so this only guards a misconfigured table.
	if normalized > 100 {
		normalized = 100
	}
	if normalized < 0 {
		normalized = 0
	}

	return Assessment{
		RawScore:       rawScore,
		SynergyPenalty: synergyPenalty,
		URLModifier:    urlModifier,
		TotalRaw:       totalRaw,
		MaxPossible:    maxPossible,
		Normalized:     normalized,
		BreachCount:    breachCount,
	}
}
