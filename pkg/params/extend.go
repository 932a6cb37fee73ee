package params

import (
	"math"

	"github.com/pslmodels/taxparams/pkg/errors"
)

// IndexRater supplies the projection rate for a parameter and year.
// The rate applies to the transition from year to year+1.
type IndexRater interface {
	IndexRate(param string, year int) (float64, error)
}

// SetIndexRater attaches the rate source used to project indexed parameters
// and invalidates any previously projected series.
func (p *Parameters) SetIndexRater(r IndexRater) {
	p.rater = r
	p.resolved = make(map[string][]float64, len(p.defs))
}

// invalidate drops the named parameter's projected series.
func (p *Parameters) invalidate(name string) {
	delete(p.resolved, name)
}

// Extend projects the named parameter's anchors into a gap-free series
// across the full year range. A year with no anchor takes the prior year's
// value, compounded by the index rate when the parameter is indexed on both
// sides of the transition. Projected values are rounded to the nearest cent.
func (p *Parameters) Extend(name string) error {
	def, err := p.Definition(name)
	if err != nil {
		return err
	}

	series := make([]float64, p.endYear-p.startYear+1)
	v, ok := def.Anchor(p.startYear)
	if !ok {
		return errors.NewValidationError(name, p.startYear, "no value for the start year")
	}
	series[0] = v

	for y := p.startYear + 1; y <= p.endYear; y++ {
		if a, ok := def.Anchor(y); ok {
			v = a
		} else if def.IndexedAt(y-1) && def.IndexedAt(y) {
			if p.rater == nil {
				return errors.NewConfigError("params", "no index rater configured for indexed parameter "+name, nil)
			}
			r, err := p.rater.IndexRate(name, y-1)
			if err != nil {
				return err
			}
			v = round2(v * (1 + r))
		}
		series[y-p.startYear] = v
	}

	p.resolved[name] = series
	return nil
}

// ExtendAll projects every parameter in the set.
func (p *Parameters) ExtendAll() error {
	for _, name := range p.Names() {
		if err := p.Extend(name); err != nil {
			return err
		}
	}
	return nil
}

// round2 rounds to two decimal places, the precision published parameter
// values carry.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
