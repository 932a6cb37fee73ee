package taxparams

import (
	"sort"
	"strings"

	"github.com/pslmodels/taxparams/pkg/errors"
	"github.com/pslmodels/taxparams/pkg/params"
)

// offsetKey is the control parameter that shifts the indexing rate itself.
const offsetKey = "CPI_offset"

// indexedSuffix marks control keys that switch a parameter's indexed status.
const indexedSuffix = "-indexed"

// Adjust resolves the adjustment's indexing interactions and commits the
// result through the base Apply exactly once, passing any caller-supplied
// options through unchanged. It returns the fully resolved adjustment: the
// caller's request with every value gap filled for every year affected by a
// rate or indexed-status change.
//
// Resolution happens entirely before the commit, so a failed adjustment
// leaves the parameter set untouched.
func (tp *TaxParams) Adjust(adj params.Adjustment, opts ...params.AdjustOption) (params.Adjustment, error) {
	resolved, err := tp.Reconcile(adj)
	if err != nil {
		return nil, err
	}
	if err := tp.params.Apply(resolved, opts...); err != nil {
		return nil, err
	}
	// CPI_offset may have moved; effective rates are rebuilt on next use.
	tp.inflation = nil
	return resolved, nil
}

// Reconcile resolves a batch of requested changes into a complete adjustment
// without mutating the parameter set. The work runs in four ordered stages:
//
//  1. CPI_offset changes update the effective rate table, and every
//     parameter indexed in the first changed year (per its current flag
//     series) is recomputed from that year forward under the new rates.
//  2. "<name>-indexed" changes switch a parameter's indexed status from the
//     changed year, holding pre-change behavior for earlier years and
//     recomputing the remaining years under the new status.
//  3. Explicitly requested values are authoritative for their exact years
//     and become the anchors from which later years are projected.
//  4. The stages are composed into one adjustment, explicit values winning
//     over recomputed ones for any (parameter, year) pair in both.
//
// Stages 1–3 share one recomputation pass per affected parameter, which
// yields the stage-4 precedence by construction.
func (tp *TaxParams) Reconcile(adj params.Adjustment) (params.Adjustment, error) {
	if len(adj) == 0 {
		return adj, nil
	}

	p := tp.params
	start, end := p.StartYear(), p.EndYear()

	resolved := make(params.Adjustment, len(adj))
	var offsetChanges []params.ValueObject
	flagChanges := make(map[string][]params.IndexedStatus)
	anchors := make(map[string]map[int]float64)

	for _, key := range adj.Keys() {
		vars := sortedVariations(adj[key])
		resolved[key] = vars

		// An empty change list is a no-op for any key kind.
		if len(vars) == 0 {
			continue
		}

		switch {
		case key == offsetKey:
			for _, v := range vars {
				f, ok := v.Float()
				if !ok {
					return nil, errors.NewValidationError(key, v.Year, "value must be a number")
				}
				if v.Year < start || v.Year > end {
					return nil, errors.NewRangeError(key, v.Year, start, end)
				}
				if _, ok := tp.factors.PriceInflation(v.Year); !ok {
					return nil, errors.NewMissingRateError(key, v.Year)
				}
				offsetChanges = append(offsetChanges, params.ValueObject{Year: v.Year, Value: f})
			}

		case strings.HasSuffix(key, indexedSuffix):
			base := strings.TrimSuffix(key, indexedSuffix)
			def, err := p.Definition(base)
			if err != nil {
				// Unknown base parameter: pass through untouched and let
				// Apply enforce the strictness option.
				continue
			}
			if !def.Indexable {
				return nil, errors.NewValidationError(key, 0, "parameter is not indexable")
			}
			entries := make([]params.IndexedStatus, 0, len(vars))
			for _, v := range vars {
				b, ok := v.Bool()
				if !ok {
					return nil, errors.NewValidationError(key, v.Year, "indexed status must be a boolean")
				}
				if v.Year < start || v.Year > end {
					return nil, errors.NewRangeError(key, v.Year, start, end)
				}
				entries = append(entries, params.IndexedStatus{Year: v.Year, Indexed: b})
			}
			flagChanges[base] = entries

		default:
			if !p.Has(key) {
				continue
			}
			direct := make(map[int]float64, len(vars))
			for _, v := range vars {
				f, ok := v.Float()
				if !ok {
					return nil, errors.NewValidationError(key, v.Year, "value must be a number")
				}
				if v.Year < start || v.Year > end {
					return nil, errors.NewRangeError(key, v.Year, start, end)
				}
				direct[v.Year] = f
			}
			anchors[key] = direct
		}
	}

	// Stage 1: the first offset-change year fixes which parameters are
	// recomputed under the new rates. The current, not-yet-modified flag
	// series decides membership.
	recomputeFrom := make(map[string]int)
	if len(offsetChanges) > 0 && offsetChanges[0].Year < end {
		offsetYear := offsetChanges[0].Year
		for _, name := range p.Names() {
			if name == offsetKey || wageIndexedParams[name] {
				continue
			}
			indexed, err := p.IndexedAt(name, offsetYear)
			if err != nil {
				return nil, err
			}
			if indexed {
				recomputeFrom[name] = offsetYear + 1
			}
		}
	}

	// Stage 2: indexed-status changes reset from the first changed year.
	for name, entries := range flagChanges {
		from := entries[0].Year
		if cur, ok := recomputeFrom[name]; !ok || from < cur {
			recomputeFrom[name] = from
		}
	}

	// Stage 3: explicit values on an affected parameter anchor the
	// recomputation, retroactively when they precede the reset year.
	for name, direct := range anchors {
		from, ok := recomputeFrom[name]
		if !ok {
			continue
		}
		for year := range direct {
			if year < from {
				from = year
			}
		}
		recomputeFrom[name] = from
	}

	rate, err := tp.prospectiveRater(offsetChanges)
	if err != nil {
		return nil, err
	}

	affected := make([]string, 0, len(recomputeFrom))
	for name := range recomputeFrom {
		affected = append(affected, name)
	}
	sort.Strings(affected)

	for _, name := range affected {
		series, err := tp.recomputeSeries(name, recomputeFrom[name], flagChanges[name], anchors[name], rate)
		if err != nil {
			return nil, err
		}
		resolved[name] = series
	}

	return resolved, nil
}

// recomputeSeries rebuilds one parameter's values from the given year
// through the end of the window. Explicit anchors are authoritative; other
// years take the prior value, compounded when the (merged) flag series marks
// the parameter indexed on both sides of the transition.
func (tp *TaxParams) recomputeSeries(name string, from int, changes []params.IndexedStatus, anchors map[int]float64, rate rateFunc) ([]params.Variation, error) {
	p := tp.params
	start, end := p.StartYear(), p.EndYear()

	def, err := p.Definition(name)
	if err != nil {
		return nil, err
	}
	indexedAt := mergedFlagSeries(def, changes)

	var v float64
	if from > start {
		v, err = p.ValueAt(name, from-1)
		if err != nil {
			return nil, err
		}
	}

	out := make([]params.Variation, 0, end-from+1)
	for y := from; y <= end; y++ {
		switch {
		case anchors != nil && hasAnchor(anchors, y):
			v = anchors[y]
		case y == start:
			v, err = p.ValueAt(name, start)
			if err != nil {
				return nil, err
			}
		case indexedAt(y-1) && indexedAt(y):
			r, err := rate(name, y-1)
			if err != nil {
				return nil, err
			}
			v = round2(v * (1 + r))
		}
		out = append(out, params.Variation{Year: y, Value: v})
	}
	return out, nil
}

// rateFunc resolves the projection rate for a parameter and year.
type rateFunc func(name string, year int) (float64, error)

// prospectiveRater builds a rate lookup reflecting the requested CPI_offset
// changes without committing them.
func (tp *TaxParams) prospectiveRater(offsetChanges []params.ValueObject) (rateFunc, error) {
	offsets, err := tp.prospectiveOffsets(offsetChanges)
	if err != nil {
		return nil, err
	}
	effective := tp.factors.EffectiveInflation(offsets)

	return func(name string, year int) (float64, error) {
		if wageIndexedParams[name] {
			r, ok := tp.factors.WageGrowth(year)
			if !ok {
				return 0, errors.NewMissingRateError(name, year)
			}
			return r, nil
		}
		r, ok := effective[year]
		if !ok {
			return 0, errors.NewMissingRateError(name, year)
		}
		return r, nil
	}, nil
}

// prospectiveOffsets overlays the requested CPI_offset changes onto the
// committed series the same way Apply would: anchors from the first changed
// year forward are superseded, and the last anchor holds through the window.
func (tp *TaxParams) prospectiveOffsets(changes []params.ValueObject) (map[int]float64, error) {
	if len(changes) == 0 {
		return tp.currentOffsets()
	}

	def, err := tp.params.Definition(offsetKey)
	if err != nil {
		return nil, err
	}

	from := changes[0].Year
	anchors := make(map[int]float64)
	for _, vo := range def.Values {
		if vo.Year < from {
			anchors[vo.Year] = vo.Value
		}
	}
	for _, vo := range changes {
		anchors[vo.Year] = vo.Value
	}

	offsets := make(map[int]float64)
	v := 0.0
	for y := tp.params.StartYear(); y <= tp.params.EndYear(); y++ {
		if a, ok := anchors[y]; ok {
			v = a
		}
		offsets[y] = v
	}
	return offsets, nil
}

// mergedFlagSeries resolves the indexed flag per year from the current
// series overlaid with the requested changes, leaving the definition alone.
func mergedFlagSeries(def *params.Definition, changes []params.IndexedStatus) func(year int) bool {
	merged := append([]params.IndexedStatus(nil), def.Indexed...)
	for _, c := range changes {
		replaced := false
		for i, st := range merged {
			if st.Year == c.Year {
				merged[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, c)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Year < merged[j].Year })

	return func(year int) bool {
		indexed := false
		for _, st := range merged {
			if st.Year > year {
				break
			}
			indexed = st.Indexed
		}
		return indexed
	}
}

// hasAnchor reports whether an explicit value exists for the year.
func hasAnchor(anchors map[int]float64, year int) bool {
	_, ok := anchors[year]
	return ok
}

// sortedVariations returns a copy of the variations ordered by year.
func sortedVariations(vars []params.Variation) []params.Variation {
	out := append([]params.Variation(nil), vars...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
