package params

import (
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/pslmodels/taxparams/pkg/errors"
)

// Variation is one requested change: a value taking effect in a year.
// Value is either a number (parameter values, CPI_offset) or a boolean
// (for "<name>-indexed" control keys).
type Variation struct {
	Year  int `yaml:"year" json:"year"`
	Value any `yaml:"value" json:"value"`
}

// Float returns the variation value as a float64 when it is numeric.
func (v Variation) Float() (float64, bool) {
	switch t := v.Value.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	default:
		return 0, false
	}
}

// Bool returns the variation value as a bool when it is boolean.
func (v Variation) Bool() (bool, bool) {
	b, ok := v.Value.(bool)
	return b, ok
}

// Adjustment is a batch of per-key change lists. Keys are parameter names
// plus the control forms "CPI_offset" and "<name>-indexed".
type Adjustment map[string][]Variation

// Keys returns the adjustment's keys in sorted order.
func (a Adjustment) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReadParams parses a raw yaml adjustment payload into an Adjustment.
// Each key maps to either a list of {year, value} entries or a bare scalar,
// which is shorthand for a single entry taking effect in the start year.
func (p *Parameters) ReadParams(data []byte) (Adjustment, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}

	adj := make(Adjustment, len(raw))
	for key, val := range raw {
		items, ok := val.([]any)
		if !ok {
			adj[key] = []Variation{{Year: p.startYear, Value: val}}
			continue
		}

		vars := make([]Variation, 0, len(items))
		for _, item := range items {
			entry, ok := asStringMap(item)
			if !ok {
				return nil, errors.NewValidationError(key, 0, "variation must be a {year, value} mapping")
			}
			value, ok := entry["value"]
			if !ok {
				return nil, errors.NewValidationError(key, 0, "variation missing value")
			}
			year := p.startYear
			if rawYear, ok := entry["year"]; ok {
				y, ok := asInt(rawYear)
				if !ok {
					return nil, errors.NewValidationError(key, 0, "variation year must be an integer")
				}
				year = y
			}
			vars = append(vars, Variation{Year: year, Value: value})
		}
		adj[key] = vars
	}
	return adj, nil
}

// asStringMap normalizes a decoded yaml mapping to string keys.
func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// asInt normalizes a decoded yaml number to an int.
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
	}
	return 0, false
}
