package domain

import "fmt"

const (
	MinStyleParam = 0.1
	MaxStyleParam = 1.0
)

// StyleParams tune StyleGAN transforms.
type StyleParams struct {
	Truncation float64 `json:"truncation"`
	Noise      float64 `json:"noise"`
	Strength   float64 `json:"strength"`
}

// DefaultStyleParams mirrors the UI defaults.
var DefaultStyleParams = StyleParams{Truncation: 0.7, Noise: 0.5, Strength: 0.8}

// Validate checks every parameter lies within [MinStyleParam, MaxStyleParam].
func (p StyleParams) Validate() error {
	for name, v := range map[string]float64{"truncation": p.Truncation, "noise": p.Noise, "strength": p.Strength} {
		if v < MinStyleParam || v > MaxStyleParam {
			return Invalid(name, fmt.Sprintf("must be between %.1f and %.1f", MinStyleParam, MaxStyleParam))
		}
	}
	return nil
}

// With returns p with the named parameter replaced.
func (p StyleParams) With(name string, value float64) (StyleParams, error) {
	switch name {
	case "truncation":
		p.Truncation = value
	case "noise":
		p.Noise = value
	case "strength":
		p.Strength = value
	default:
		return p, Invalid("param", fmt.Sprintf("unknown parameter %q", name))
	}
	return p, p.Validate()
}
