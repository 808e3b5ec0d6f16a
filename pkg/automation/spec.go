package automation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SpecKind discriminates the automation spec variants.
type SpecKind int

const (
	// SpecStatic is a bare numeric value: a static change at sample 0.
	SpecStatic SpecKind = iota
	// SpecText is a bare string resolved through the processor's
	// text-to-value capability, applied at sample 0.
	SpecText
	// SpecKeyframes is a time-key to value mapping interpolated at
	// block granularity.
	SpecKeyframes
)

// KeyframeSpec is one entry of a keyframe mapping, value still either
// numeric or textual.
type KeyframeSpec struct {
	Key    TimeKey
	Value  float64
	Text   string
	IsText bool
}

// Spec is one parameter's automation specification, decoded once from
// JSON before any rendering starts.
type Spec struct {
	Kind      SpecKind
	Value     float64
	Text      string
	Keyframes []KeyframeSpec
}

// UnmarshalJSON decodes a number, string, or time-key object. Object keys
// are walked with a token decoder so the file's keyframe order survives
// into Keyframes.
func (s *Spec) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
		}
		*s = Spec{Kind: SpecStatic, Value: f}
		return nil

	case string:
		*s = Spec{Kind: SpecText, Text: v}
		return nil

	case json.Delim:
		if v != '{' {
			return fmt.Errorf("%w: expected number, string, or object", ErrInvalidSpec)
		}
		out := Spec{Kind: SpecKeyframes}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("%w: non-string time key", ErrInvalidSpec)
			}
			tk, err := ParseTimeKey(key)
			if err != nil {
				return err
			}

			valTok, err := dec.Token()
			if err != nil {
				return err
			}
			kf := KeyframeSpec{Key: tk}
			switch val := valTok.(type) {
			case json.Number:
				f, err := val.Float64()
				if err != nil {
					return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
				}
				kf.Value = f
			case string:
				kf.Text = val
				kf.IsText = true
			default:
				return fmt.Errorf("%w: keyframe value at %q must be number or string", ErrInvalidSpec, key)
			}
			out.Keyframes = append(out.Keyframes, kf)
		}
		if _, err := dec.Token(); err != nil { // closing brace
			return err
		}
		*s = out
		return nil

	default:
		return fmt.Errorf("%w: expected number, string, or object", ErrInvalidSpec)
	}
}

// Entry pairs a parameter name with its spec, in file order.
type Entry struct {
	Name string
	Spec Spec
}

// File is an automation file: an ordered parameter-name to spec mapping.
type File []Entry

// ParseFile decodes a JSON automation file. The top level must be an
// object; entry order is preserved so conflict warnings and tie-breaks
// stay deterministic.
func ParseFile(r io.Reader) (File, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: top level must be a JSON object", ErrInvalidSpec)
	}

	var file File
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string parameter name", ErrInvalidSpec)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
		}
		var spec Spec
		if err := json.Unmarshal(raw, &spec); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		file = append(file, Entry{Name: name, Spec: spec})
	}

	return file, nil
}

// LoadFile reads and parses an automation file from disk.
func LoadFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFile(f)
}
