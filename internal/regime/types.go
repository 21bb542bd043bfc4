package regime

// RegimeType is the market condition a row belongs to
type RegimeType int

const (
	RegimeBull RegimeType = iota
	RegimeBear
)

func (r RegimeType) String() string {
	switch r {
	case RegimeBull:
		return "BULL"
	case RegimeBear:
		return "BEAR"
	default:
		return "UNKNOWN"
	}
}

// RegimeConfig holds the parameters of the moving-average regime split
type RegimeConfig struct {
	MAWindow        int  `json:"ma_window" yaml:"ma_window"`
	UndefinedAsBear bool `json:"undefined_as_bear" yaml:"undefined_as_bear"`
}

// DefaultRegimeConfig returns the 200-day moving average split
func DefaultRegimeConfig() RegimeConfig {
	return RegimeConfig{
		MAWindow: 200,
	}
}
