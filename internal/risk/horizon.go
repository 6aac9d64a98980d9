package risk

// Horizon is the forecast window.
type Horizon string

const (
	OneWeek     Horizon = "1week"
	OneMonth    Horizon = "1month"
	ThreeMonths Horizon = "3months"
)

// ParseHorizon accepts the three known windows and defaults to OneWeek.
func ParseHorizon(s string) Horizon {
	switch h := Horizon(s); h {
	case OneMonth, ThreeMonths:
		return h
	default:
		return OneWeek
	}
}
