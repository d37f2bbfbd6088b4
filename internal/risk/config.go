package risk

// Factor names accepted by the scoring engine. The weight table keys define
// the universe of scoreable factors; anything else contributes nothing.
const (
	FactorPaymentInfo      = "paymentInfoAccess"
	FactorHealthData       = "healthDataAccess"
	FactorSMS              = "smsAccess"
	FactorCallLogs         = "callLogsAccess"
	FactorLocation         = "locationAccess"
	FactorCameraMicrophone = "cameraMicrophoneAccess"
	FactorContacts         = "contactsAccess"
	FactorStorage          = "storageAccess"
	FactorCookiesTrackers  = "cookiesTrackers"
	FactorDeviceID         = "deviceIDAccess"
	FactorNetworkInfo      = "networkInfoAccess"
	FactorUserEmail        = "userEmail"
	FactorUserPhoneNumber  = "userPhoneNumber"
)

// Level is an ordinal risk tier derived from the normalized score.
type Level string

const (
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelHigh     Level = "High"
	LevelCritical Level = "Critical"
)

// SynergyRule adds a penalty when every listed factor is simultaneously true.
// Rules are independent: overlapping rules all fire.
type SynergyRule struct {
	Name    string
	Factors []string
	Penalty int
}

// BreachModifier converts a domain breach count into score points, capped.
type BreachModifier struct {
	PerBreach   int
	MaxModifier int
}

// Thresholds are ascending normalized-score cutoffs for Medium/High/Critical.
// Below Medium is Low.
type Thresholds struct {
	Medium   int
	High     int
	Critical int
}

// Config is the immutable scoring configuration, loaded once at startup.
type Config struct {
	Weights    map[string]int
	Synergies  []SynergyRule
	Breach     BreachModifier
	Thresholds Thresholds

	maxPossible int
}

// DefaultConfig returns the canonical scoring configuration.
//
// There is deliberately exactly one table: the product historically shipped
// two diverging weight/threshold tables and only one was live. The live one
// (Medium at 21, High at 51, Critical at 76) is canonical here.
func DefaultConfig() *Config {
	cfg := &Config{
		Weights: map[string]int{
			FactorPaymentInfo:      12,
			FactorHealthData:       11,
			FactorSMS:              9,
			FactorCallLogs:         9,
			FactorLocation:         8,
			FactorCameraMicrophone: 8,
			FactorContacts:         7,
			FactorStorage:          6,
			FactorCookiesTrackers:  5,
			FactorDeviceID:         5,
			FactorNetworkInfo:      3,
			FactorUserEmail:        5,
			FactorUserPhoneNumber:  3,
		},
		Synergies: []SynergyRule{
			{
				Name:    "surveillance",
				Factors: []string{FactorLocation, FactorCameraMicrophone},
				Penalty: 4,
			},
			{
				Name:    "financial-interception",
				Factors: []string{FactorPaymentInfo, FactorSMS},
				Penalty: 5,
			},
			{
				Name:    "health-profiling",
				Factors: []string{FactorHealthData, FactorCookiesTrackers},
				Penalty: 5,
			},
		},
		Breach: BreachModifier{
			PerBreach:   3,
			MaxModifier: 15,
		},
		Thresholds: Thresholds{
			Medium:   21,
			High:     51,
			Critical: 76,
		},
	}

	cfg.maxPossible = computeMaxPossible(cfg)
	return cfg
}

// MaxPossible is the highest achievable raw total for this configuration:
// sum of all weights, plus all synergy penalties, plus the breach cap.
// Constant for a given config.
func (c *Config) MaxPossible() int {
	if c.maxPossible == 0 {
		c.maxPossible = computeMaxPossible(c)
	}
	return c.maxPossible
}

func computeMaxPossible(c *Config) int {
	total := 0
	for _, w := range c.Weights {
		total += w
	}
	for _, rule := range c.Synergies {
		total += rule.Penalty
	}
	return total + c.Breach.MaxModifier
}

// LevelFor maps a normalized 0-100 score to its tier.
func (c *Config) LevelFor(normalized int) Level {
	switch {
	case normalized >= c.Thresholds.Critical:
		return LevelCritical
	case normalized >= c.Thresholds.High:
		return LevelHigh
	case normalized >= c.Thresholds.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// PermissionFactors lists the permission-flag factor names, excluding the
// user-data-presence factors. Used for request validation.
func (c *Config) PermissionFactors() []string {
	factors := make([]string, 0, len(c.Weights))
	for name := range c.Weights {
		if name == FactorUserEmail || name == FactorUserPhoneNumber {
			continue
		}
		factors = append(factors, name)
	}
	return factors
}
