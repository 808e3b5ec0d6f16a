// Package automation parses parameter automation specifications and
// expands them into sample-positioned parameter changes at block
// granularity.
package automation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TimeKeyKind discriminates the time-key grammar variants.
type TimeKeyKind int

const (
	// KeySamples is a literal sample offset ("1000").
	KeySamples TimeKeyKind = iota
	// KeySeconds is seconds at the render sample rate ("1.5s").
	KeySeconds
	// KeyPercent is a percentage of the total render length ("50%").
	KeyPercent
)

// TimeKey is a keyframe position in one of three time domains. It is
// resolved to a sample offset once the total length is known.
type TimeKey struct {
	Kind    TimeKeyKind
	Samples int
	Seconds float64
	Percent float64
}

// ParseTimeKey parses a keyframe time key. Surrounding whitespace is
// ignored. A trailing '%' means percentage of the total length (0-100
// inclusive), a trailing 's' means seconds, anything else is a literal
// sample offset.
func ParseTimeKey(key string) (TimeKey, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return TimeKey{}, fmt.Errorf("%w: empty time key", ErrInvalidSpec)
	}

	if strings.HasSuffix(key, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(key, "%")), 64)
		if err != nil {
			return TimeKey{}, fmt.Errorf("%w: invalid percent key %q", ErrInvalidSpec, key)
		}
		if pct < 0 || pct > 100 {
			return TimeKey{}, fmt.Errorf("%w: percent key %q outside 0-100", ErrInvalidSpec, key)
		}
		return TimeKey{Kind: KeyPercent, Percent: pct}, nil
	}

	if strings.HasSuffix(key, "s") {
		sec, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(key, "s")), 64)
		if err != nil {
			return TimeKey{}, fmt.Errorf("%w: invalid seconds key %q", ErrInvalidSpec, key)
		}
		return TimeKey{Kind: KeySeconds, Seconds: sec}, nil
	}

	samples, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return TimeKey{}, fmt.Errorf("%w: invalid time key %q", ErrInvalidSpec, key)
	}
	return TimeKey{Kind: KeySamples, Samples: int(samples)}, nil
}

// Resolve converts the key to an absolute sample offset.
func (k TimeKey) Resolve(sampleRate float64, totalSamples int) int {
	switch k.Kind {
	case KeySeconds:
		return int(k.Seconds * sampleRate)
	case KeyPercent:
		return int(math.Round(float64(totalSamples) * k.Percent / 100.0))
	default:
		return k.Samples
	}
}

func (k TimeKey) String() string {
	switch k.Kind {
	case KeySeconds:
		return fmt.Sprintf("%gs", k.Seconds)
	case KeyPercent:
		return fmt.Sprintf("%g%%", k.Percent)
	default:
		return strconv.Itoa(k.Samples)
	}
}
