package risk

import (
	"math"
	"testing"
)

func allFactorsTrue(cfg *Config) map[string]bool {
	permissions := make(map[string]bool)
	for _, factor := range cfg.PermissionFactors() {
		permissions[factor] = true
	}
	return permissions
}

func TestMaxPossibleIsConstant(t *testing.T) {
	cfg := DefaultConfig()

	want := 0
	for _, w := range cfg.Weights {
		want += w
	}
	for _, rule := range cfg.Synergies {
		want += rule.Penalty
	}
	want += cfg.Breach.MaxModifier

	if cfg.MaxPossible() != want {
		t.Fatalf("MaxPossible() = %d, want %d", cfg.MaxPossible(), want)
	}
	if cfg.MaxPossible() != 120 {
		t.Fatalf("default config MaxPossible = %d, want 120", cfg.MaxPossible())
	}

	// Repeated calls and scoring never change it.
	_ = Score(cfg, allFactorsTrue(cfg), true, true, 99)
	if cfg.MaxPossible() != want {
		t.Errorf("MaxPossible changed after scoring: %d", cfg.MaxPossible())
	}
}

func TestEmptyInputScoresZero(t *testing.T) {
	cfg := DefaultConfig()

	a := Score(cfg, map[string]bool{}, false, false, 0)
	if a.RawScore != 0 || a.SynergyPenalty != 0 || a.URLModifier != 0 {
		t.Errorf("empty input produced nonzero components: %+v", a)
	}
	if a.Normalized != 0 {
		t.Errorf("Normalized = %d, want 0", a.Normalized)
	}
	if cfg.LevelFor(a.Normalized) != LevelLow {
		t.Errorf("level = %s, want Low", cfg.LevelFor(a.Normalized))
	}
}

func TestAllFactorsNoBreaches(t *testing.T) {
	cfg := DefaultConfig()

	a := Score(cfg, allFactorsTrue(cfg), true, true, 0)

	wantTotal := cfg.MaxPossible() - cfg.Breach.MaxModifier
	if a.TotalRaw != wantTotal {
		t.Errorf("TotalRaw = %d, want %d (all weights + all penalties)", a.TotalRaw, wantTotal)
	}
	if a.URLModifier != 0 {
		t.Errorf("URLModifier = %d, want 0 when breach count is 0", a.URLModifier)
	}
}

func TestNormalizedStaysInRange(t *testing.T) {
	cfg := DefaultConfig()
	factors := cfg.PermissionFactors()

	// Walk a spread of boolean combinations plus breach counts, including
	// ones far beyond the modifier cap.
	for mask := 0; mask < 1<<len(factors); mask += 37 {
		permissions := make(map[string]bool, len(factors))
		for i, factor := range factors {
			permissions[factor] = mask&(1<<i) != 0
		}
		for _, breaches := range []int{0, 1, 5, 1000} {
			a := Score(cfg, permissions, mask%2 == 0, mask%3 == 0, breaches)
			if a.Normalized < 0 || a.Normalized > 100 {
				t.Fatalf("Normalized = %d out of [0,100] for mask=%d breaches=%d", a.Normalized, mask, breaches)
			}
			if a.TotalRaw > a.MaxPossible {
				t.Fatalf("TotalRaw %d exceeds MaxPossible %d", a.TotalRaw, a.MaxPossible)
			}
		}
	}
}

func TestBreachModifierMonotoneAndCapped(t *testing.T) {
	cfg := DefaultConfig()
	permissions := map[string]bool{FactorLocation: true}

	prev := Score(cfg, permissions, false, false, 0).TotalRaw
	for n := 1; n <= 20; n++ {
		cur := Score(cfg, permissions, false, false, n).TotalRaw
		if cur < prev {
			t.Fatalf("TotalRaw decreased from %d to %d at breachCount=%d", prev, cur, n)
		}
		prev = cur
	}

	atCap := cfg.Breach.MaxModifier / cfg.Breach.PerBreach
	capped := Score(cfg, permissions, false, false, atCap)
	flooded := Score(cfg, permissions, false, false, 1000)
	if capped.URLModifier != cfg.Breach.MaxModifier {
		t.Errorf("URLModifier at cap = %d, want %d", capped.URLModifier, cfg.Breach.MaxModifier)
	}
	if flooded.URLModifier != capped.URLModifier {
		t.Errorf("URLModifier for breachCount=1000 is %d, want same as cap %d", flooded.URLModifier, capped.URLModifier)
	}
}

func TestNegativeBreachCountTreatedAsZero(t *testing.T) {
	cfg := DefaultConfig()
	a := Score(cfg, nil, false, false, -3)
	if a.URLModifier != 0 || a.BreachCount != 0 {
		t.Errorf("negative breach count leaked through: %+v", a)
	}
}

func TestSynergyRulesFireIndependently(t *testing.T) {
	cfg := DefaultConfig()

	permissions := map[string]bool{
		FactorLocation:         true,
		FactorCameraMicrophone: true,
		FactorPaymentInfo:      true,
		FactorSMS:              true,
	}

	a := Score(cfg, permissions, false, false, 0)

	// Both non-overlapping rules add their penalties; neither excludes the other.
	want := 0
	for _, rule := range cfg.Synergies {
		fired := true
		for _, factor := range rule.Factors {
			if !permissions[factor] {
				fired = false
				break
			}
		}
		if fired {
			want += rule.Penalty
		}
	}
	if want != 9 {
		t.Fatalf("test setup: expected surveillance(4)+financial(5) penalties, got %d", want)
	}
	if a.SynergyPenalty != want {
		t.Errorf("SynergyPenalty = %d, want %d", a.SynergyPenalty, want)
	}
}

func TestPartialSynergyDoesNotFire(t *testing.T) {
	cfg := DefaultConfig()

	a := Score(cfg, map[string]bool{FactorLocation: true}, false, false, 0)
	if a.SynergyPenalty != 0 {
		t.Errorf("single factor fired a synergy rule: penalty %d", a.SynergyPenalty)
	}
}

func TestUnknownFactorsContributeNothing(t *testing.T) {
	cfg := DefaultConfig()

	a := Score(cfg, map[string]bool{"bluetoothAccess": true, "made-up": true}, false, false, 0)
	if a.RawScore != 0 {
		t.Errorf("unknown factors contributed %d points", a.RawScore)
	}
}

func TestEndToEndScenario(t *testing.T) {
	cfg := DefaultConfig()

	a := Score(cfg, map[string]bool{
		FactorLocation:         true,
		FactorCameraMicrophone: true,
	}, false, false, 0)

	if a.RawScore != 16 {
		t.Errorf("RawScore = %d, want 16", a.RawScore)
	}
	if a.SynergyPenalty != 4 {
		t.Errorf("SynergyPenalty = %d, want 4", a.SynergyPenalty)
	}
	if a.URLModifier != 0 {
		t.Errorf("URLModifier = %d, want 0", a.URLModifier)
	}
	if a.TotalRaw != 20 {
		t.Errorf("TotalRaw = %d, want 20", a.TotalRaw)
	}
	if a.MaxPossible != 120 {
		t.Errorf("MaxPossible = %d, want 120", a.MaxPossible)
	}
	wantNormalized := int(math.Round(20.0 / 120.0 * 100))
	if a.Normalized != wantNormalized || a.Normalized != 17 {
		t.Errorf("Normalized = %d, want 17", a.Normalized)
	}
	if cfg.LevelFor(a.Normalized) != LevelLow {
		t.Errorf("level = %s, want Low", cfg.LevelFor(a.Normalized))
	}
}

func TestLevelThresholds(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		normalized int
		want       Level
	}{
		{0, LevelLow},
		{20, LevelLow},
		{21, LevelMedium},
		{50, LevelMedium},
		{51, LevelHigh},
		{75, LevelHigh},
		{76, LevelCritical},
		{100, LevelCritical},
	}
	for _, tc := range cases {
		if got := cfg.LevelFor(tc.normalized); got != tc.want {
			t.Errorf("LevelFor(%d) = %s, want %s", tc.normalized, got, tc.want)
		}
	}
}
