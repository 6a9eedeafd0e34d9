package animation

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float64) float64

// Easing ids accepted by definitions and play options.
const (
	EaseLinear     = "linear"
	EaseIn         = "easeIn"
	EaseOut        = "easeOut"
	EaseInOut      = "easeInOut"
	EaseCubicIn    = "cubicIn"
	EaseCubicOut   = "cubicOut"
	EaseCubicInOut = "cubicInOut"
)

var easings = map[string]Easing{
	EaseLinear: func(t float64) float64 { return t },
	EaseIn:     func(t float64) float64 { return t * t },
	EaseOut:    func(t float64) float64 { return t * (2 - t) },
	EaseInOut: func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	},
	EaseCubicIn: func(t float64) float64 { return t * t * t },
	EaseCubicOut: func(t float64) float64 {
		u := t - 1
		return u*u*u + 1
	},
	EaseCubicInOut: func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		u := 2*t - 2
		return 0.5*u*u*u + 1
	},
}

// LookupEasing returns the easing registered under id. The empty id selects
// easeInOut.
func LookupEasing(id string) (Easing, bool) {
	if id == "" {
		return easings[EaseInOut], true
	}
	e, ok := easings[id]
	return e, ok
}
