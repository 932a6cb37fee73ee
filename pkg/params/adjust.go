package params

import (
	"sort"
	"strings"

	"github.com/pslmodels/taxparams/pkg/errors"
)

// AdjustOptions configures how an adjustment is validated and applied.
type AdjustOptions struct {
	// Strict rejects unknown adjustment keys. When disabled they are skipped.
	Strict bool
}

// AdjustOption is a function that configures adjust options.
type AdjustOption func(*AdjustOptions)

// WithStrictValidation toggles rejection of unknown adjustment keys.
func WithStrictValidation(enabled bool) AdjustOption {
	return func(o *AdjustOptions) {
		o.Strict = enabled
	}
}

// NewAdjustOptions creates AdjustOptions with defaults.
func NewAdjustOptions(opts ...AdjustOption) *AdjustOptions {
	options := &AdjustOptions{Strict: true}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// flagUpdate is a validated "<name>-indexed" change list.
type flagUpdate struct {
	name    string
	entries []IndexedStatus
}

// valueUpdate is a validated list of explicit values for one parameter.
type valueUpdate struct {
	name    string
	entries []ValueObject
}

// Apply validates the adjustment and commits it into the parameter set.
// "<name>-indexed" keys merge into the named parameter's indexed flag
// series; every other key merges explicit values into that parameter's
// anchors, dropping anchors after the earliest adjusted year so the new
// values become the base for projection. Touched parameters are then
// re-projected across the full year range.
//
// The whole batch is validated before anything is mutated, so a failed
// Apply leaves the set unchanged. Apply performs no indexing-dependent
// recalculation of other parameters; resolving those interactions is the
// caller's concern (see the taxparams package).
func (p *Parameters) Apply(adj Adjustment, opts ...AdjustOption) error {
	if len(adj) == 0 {
		return nil
	}
	options := NewAdjustOptions(opts...)

	var flags []flagUpdate
	var values []valueUpdate

	for _, key := range adj.Keys() {
		vars := adj[key]
		if base, ok := strings.CutSuffix(key, "-indexed"); ok {
			update, err := p.validateFlagUpdate(key, base, vars, options)
			if err != nil {
				return err
			}
			if update != nil {
				flags = append(flags, *update)
			}
			continue
		}

		update, err := p.validateValueUpdate(key, vars, options)
		if err != nil {
			return err
		}
		if update != nil {
			values = append(values, *update)
		}
	}

	touched := make(map[string]bool)
	for _, f := range flags {
		touched[f.name] = true
	}
	for _, v := range values {
		touched[v.name] = true
	}

	names := make([]string, 0, len(touched))
	for name := range touched {
		names = append(names, name)
	}
	sort.Strings(names)

	// Re-projection can still fail (e.g. no rate for a newly indexed
	// transition), so snapshot the touched definitions for rollback.
	snapshots := make(map[string]defSnapshot, len(names))
	for _, name := range names {
		snapshots[name] = p.snapshot(name)
	}

	// Flags first so re-projection sees the new indexed status.
	for _, f := range flags {
		p.defs[f.name].setIndexed(f.entries)
	}
	for _, v := range values {
		p.defs[v.name].mergeAnchors(v.entries)
	}

	for _, name := range names {
		p.invalidate(name)
		if err := p.Extend(name); err != nil {
			for snapName, snap := range snapshots {
				p.restore(snapName, snap)
			}
			return err
		}
	}
	return nil
}

// defSnapshot captures one parameter's committed state for rollback.
type defSnapshot struct {
	indexed   []IndexedStatus
	values    []ValueObject
	series    []float64
	hadSeries bool
}

func (p *Parameters) snapshot(name string) defSnapshot {
	def := p.defs[name]
	series, hadSeries := p.resolved[name]
	return defSnapshot{
		indexed:   append([]IndexedStatus(nil), def.Indexed...),
		values:    append([]ValueObject(nil), def.Values...),
		series:    series,
		hadSeries: hadSeries,
	}
}

func (p *Parameters) restore(name string, snap defSnapshot) {
	def := p.defs[name]
	def.Indexed = snap.indexed
	def.Values = snap.values
	if snap.hadSeries {
		p.resolved[name] = snap.series
	} else {
		p.invalidate(name)
	}
}

// validateFlagUpdate checks one "<name>-indexed" change list.
func (p *Parameters) validateFlagUpdate(key, base string, vars []Variation, options *AdjustOptions) (*flagUpdate, error) {
	def, ok := p.defs[base]
	if !ok {
		if !options.Strict {
			return nil, nil
		}
		return nil, errors.NewValidationError(key, 0, "unknown parameter")
	}
	if !def.Indexable {
		return nil, errors.NewValidationError(key, 0, "parameter is not indexable")
	}

	entries := make([]IndexedStatus, 0, len(vars))
	for _, v := range vars {
		if v.Year < p.startYear || v.Year > p.endYear {
			return nil, errors.NewRangeError(key, v.Year, p.startYear, p.endYear)
		}
		b, ok := v.Bool()
		if !ok {
			return nil, errors.NewValidationError(key, v.Year, "indexed status must be a boolean")
		}
		entries = append(entries, IndexedStatus{Year: v.Year, Indexed: b})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Year < entries[j].Year })
	return &flagUpdate{name: base, entries: entries}, nil
}

// validateValueUpdate checks one explicit value change list.
func (p *Parameters) validateValueUpdate(key string, vars []Variation, options *AdjustOptions) (*valueUpdate, error) {
	if _, ok := p.defs[key]; !ok {
		if !options.Strict {
			return nil, nil
		}
		return nil, errors.NewValidationError(key, 0, "unknown parameter")
	}

	entries := make([]ValueObject, 0, len(vars))
	for _, v := range vars {
		if v.Year < p.startYear || v.Year > p.endYear {
			return nil, errors.NewRangeError(key, v.Year, p.startYear, p.endYear)
		}
		f, ok := v.Float()
		if !ok {
			return nil, errors.NewValidationError(key, v.Year, "value must be a number")
		}
		entries = append(entries, ValueObject{Year: v.Year, Value: f})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Year < entries[j].Year })

	// Last entry wins when a year is repeated.
	deduped := entries[:0]
	for i, e := range entries {
		if i+1 < len(entries) && entries[i+1].Year == e.Year {
			continue
		}
		deduped = append(deduped, e)
	}
	return &valueUpdate{name: key, entries: deduped}, nil
}
