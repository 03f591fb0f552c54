package judgement

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Thresholds are the lower loss bounds of each band. A loss below
// Excellent is Best; a loss at or above Blunder is Blunder.
type Thresholds struct {
	Excellent  float64 `yaml:"excellent"`
	Good       float64 `yaml:"good"`
	Inaccuracy float64 `yaml:"inaccuracy"`
	Mistake    float64 `yaml:"mistake"`
	Blunder    float64 `yaml:"blunder"`
}

type policyFile struct {
	Thresholds *Thresholds `yaml:"thresholds"`
}

var ErrInvalidThresholds = errors.New("invalid judgement thresholds")

// DefaultThresholds returns the embedded policy.
func DefaultThresholds() Thresholds {
	t, err := parsePolicy(defaultPolicy)
	if err != nil {
		panic(fmt.Sprintf("embedded judgement policy: %v", err))
	}
	return t
}

// LoadThresholds reads a policy file. An empty path yields the defaults.
func LoadThresholds(path string) (Thresholds, error) {
	if path == "" {
		return DefaultThresholds(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, fmt.Errorf("read judgement policy: %w", err)
	}
	t, err := parsePolicy(raw)
	if err != nil {
		return Thresholds{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func parsePolicy(raw []byte) (Thresholds, error) {
	var f policyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Thresholds{}, fmt.Errorf("parse judgement policy: %w", err)
	}
	if f.Thresholds == nil {
		return Thresholds{}, fmt.Errorf("%w: missing thresholds", ErrInvalidThresholds)
	}
	if err := f.Thresholds.Validate(); err != nil {
		return Thresholds{}, err
	}
	return *f.Thresholds, nil
}

// Validate checks that the bands are contiguous and monotone.
func (t Thresholds) Validate() error {
	bounds := t.ordered()
	prev := 0.0
	for i, b := range bounds {
		if b < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidThresholds, Judgement(i+1))
		}
		if b < prev {
			return fmt.Errorf("%w: %s (%v) below %s (%v)", ErrInvalidThresholds, Judgement(i+1), b, Judgement(i), prev)
		}
		prev = b
	}
	return nil
}

// ordered lists bounds from Excellent to Blunder; index i is band i+1.
func (t Thresholds) ordered() [5]float64 {
	return [5]float64{t.Excellent, t.Good, t.Inaccuracy, t.Mistake, t.Blunder}
}
