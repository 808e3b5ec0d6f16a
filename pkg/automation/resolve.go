package automation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/midihost/midihost/pkg/debug"
)

// Change sets parameter Param to normalized Value at absolute sample
// Offset; the processor holds the value until the next change.
type Change struct {
	Offset int
	Param  int
	Value  float64
}

// Keyframe is a resolved (sample offset, value) pair, internal to
// interpolation.
type Keyframe struct {
	Offset int
	Value  float64
}

// ParamResolver is the slice of the processor contract automation needs:
// parameter discovery and text-to-value conversion.
type ParamResolver interface {
	NumParams() int
	ParamName(index int) string
	TextToValue(index int, text string) (float64, error)
}

// FindParam returns the index of the parameter whose name matches,
// ignoring case. The error names the missing parameter and points at the
// params listing so the caller can discover valid names.
func FindParam(proc ParamResolver, name string) (int, error) {
	for i := 0; i < proc.NumParams(); i++ {
		if strings.EqualFold(proc.ParamName(i), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (run the params command to list available parameters)", ErrParamNotFound, name)
}

// Resolve expands an automation file into a sample-sorted change list.
// totalSamples anchors percentage keys; blockSize bounds interpolation
// density to one change per block per parameter, which is the granularity
// the engine can apply mid-block anyway.
func Resolve(file File, proc ParamResolver, sampleRate float64, totalSamples, blockSize int) ([]Change, error) {
	var changes []Change

	for _, entry := range file {
		idx, err := FindParam(proc, entry.Name)
		if err != nil {
			return nil, err
		}

		switch entry.Spec.Kind {
		case SpecStatic:
			changes = append(changes, Change{Offset: 0, Param: idx, Value: entry.Spec.Value})

		case SpecText:
			value, err := proc.TextToValue(idx, entry.Spec.Text)
			if err != nil {
				return nil, fmt.Errorf("%w: %q for parameter %q: %v", ErrTextValue, entry.Spec.Text, entry.Name, err)
			}
			changes = append(changes, Change{Offset: 0, Param: idx, Value: value})

		case SpecKeyframes:
			keyframes := make([]Keyframe, 0, len(entry.Spec.Keyframes))
			for _, kf := range entry.Spec.Keyframes {
				offset := kf.Key.Resolve(sampleRate, totalSamples)
				value := kf.Value
				if kf.IsText {
					value, err = proc.TextToValue(idx, kf.Text)
					if err != nil {
						return nil, fmt.Errorf("%w: %q at time %q for parameter %q: %v",
							ErrTextValue, kf.Text, kf.Key.String(), entry.Name, err)
					}
				}
				keyframes = append(keyframes, Keyframe{Offset: offset, Value: value})
			}

			sort.SliceStable(keyframes, func(i, j int) bool {
				return keyframes[i].Offset < keyframes[j].Offset
			})

			for _, kf := range Interpolate(keyframes, blockSize) {
				changes = append(changes, Change{Offset: kf.Offset, Param: idx, Value: kf.Value})
			}
		}
	}

	sortChanges(changes)
	return changes, nil
}

// Interpolate expands sorted keyframes into block-granular values: both
// endpoints of every consecutive pair, plus a linear sample at each block
// boundary strictly between them. Zero keyframes yield nothing; a single
// keyframe is a static change at its own offset.
func Interpolate(keyframes []Keyframe, blockSize int) []Keyframe {
	if len(keyframes) == 0 {
		return nil
	}
	if len(keyframes) == 1 {
		return []Keyframe{keyframes[0]}
	}

	var result []Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		k0, k1 := keyframes[i], keyframes[i+1]
		result = append(result, k0)

		if k1.Offset <= k0.Offset {
			continue
		}
		firstBoundary := (k0.Offset/blockSize + 1) * blockSize
		for offset := firstBoundary; offset < k1.Offset; offset += blockSize {
			t := float64(offset-k0.Offset) / float64(k1.Offset-k0.Offset)
			result = append(result, Keyframe{
				Offset: offset,
				Value:  k0.Value + t*(k1.Value-k0.Value),
			})
		}
	}
	result = append(result, keyframes[len(keyframes)-1])
	return result
}

// Override is a one-shot parameter setting applied at sample 0, taking
// precedence over any file-sourced automation for the same parameter.
type Override struct {
	Param int
	Value float64
}

// ParseOverride parses a CLI-style "Name:value" argument. The value may
// be numeric (normalized) or text the processor can convert; an optional
// ":n" suffix marks the numeric value explicitly normalized.
func ParseOverride(arg string, proc ParamResolver) (Override, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 2 {
		return Override{}, fmt.Errorf("%w: %q (expected \"Name:value\" or \"Name:value:n\")", ErrInvalidSpec, arg)
	}

	name := strings.TrimSpace(parts[0])
	valueStr := strings.TrimSpace(parts[1])

	idx, err := FindParam(proc, name)
	if err != nil {
		return Override{}, err
	}

	if value, numErr := strconv.ParseFloat(valueStr, 64); numErr == nil {
		return Override{Param: idx, Value: value}, nil
	}

	value, err := proc.TextToValue(idx, valueStr)
	if err != nil {
		return Override{}, fmt.Errorf("%w: %q for parameter %q: %v", ErrTextValue, valueStr, name, err)
	}
	return Override{Param: idx, Value: value}, nil
}

// Merge applies overrides to a file-sourced change list. File entries for
// an overridden parameter are dropped with a warning, the override is
// appended as a static change at sample 0, and the result is re-sorted.
func Merge(changes []Change, overrides []Override, logger *debug.Logger) []Change {
	if len(overrides) == 0 {
		return changes
	}
	if logger == nil {
		logger = debug.Default()
	}

	merged := changes
	for _, o := range overrides {
		kept := merged[:0]
		dropped := 0
		for _, c := range merged {
			if c.Param == o.Param {
				dropped++
				continue
			}
			kept = append(kept, c)
		}
		if dropped > 0 {
			logger.Warn("override for parameter %d drops %d automation file entries", o.Param, dropped)
		}
		merged = append(kept, Change{Offset: 0, Param: o.Param, Value: o.Value})
	}

	sortChanges(merged)
	return merged
}

func sortChanges(changes []Change) {
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Offset < changes[j].Offset
	})
}
