package progression

// Params defines all tunable constants of the progression formulas
type Params struct {
	// Leveling: threshold(level) = round(LevelBaseXP * level^LevelExponent)
	LevelBaseXP   float64
	LevelExponent float64

	// Session rewards: round(cards*XPPerCard + minutes*XPPerMinute), capped
	XPPerCard    float64
	XPPerMinute  float64
	SessionXPCap int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	LevelBaseXP   float64
	LevelExponent float64
	XPPerCard     float64
	XPPerMinute   float64
	SessionXPCap  int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		LevelBaseXP:   100,
		LevelExponent: 1.3,

		XPPerCard:   1.2,
		XPPerMinute: 2,

		// Hard ceiling per session so long sessions cannot be farmed
		SessionXPCap: 100,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.LevelBaseXP > 0 {
		params.LevelBaseXP = config.LevelBaseXP
	}
	if config.LevelExponent > 0 {
		params.LevelExponent = config.LevelExponent
	}
	if config.XPPerCard > 0 {
		params.XPPerCard = config.XPPerCard
	}
	if config.XPPerMinute > 0 {
		params.XPPerMinute = config.XPPerMinute
	}
	if config.SessionXPCap > 0 {
		params.SessionXPCap = config.SessionXPCap
	}

	return params
}
