// Package taxparams manages US tax-policy parameters and the domain rules
// for escalating ("indexing") their values to inflation over time.
//
// The generic storage, validation, and projection machinery lives in
// pkg/params; this package layers the one piece of bespoke logic on top:
// reconciling a batch of changes that may alter whether a parameter is
// indexed ("<name>-indexed" keys) or alter the indexing rate itself
// ("CPI_offset") into a complete, internally consistent set of per-year
// values, which is then committed through the base Apply exactly once.
//
// Example usage:
//
//	tp, err := taxparams.New()
//	if err != nil {
//	    log.Fatal().Err(err).Msg("loading policy defaults")
//	}
//
//	adj, err := tp.Params().ReadParams(reformYAML)
//	if err != nil {
//	    log.Fatal().Err(err).Msg("parsing reform")
//	}
//
//	resolved, err := tp.Adjust(adj)
package taxparams

import (
	"github.com/pslmodels/taxparams/pkg/errors"
	"github.com/pslmodels/taxparams/pkg/params"
)

// wageIndexedParams are projected by wage growth instead of price inflation.
var wageIndexedParams = map[string]bool{
	"SS_Earnings_c":   true,
	"SS_Earnings_thd": true,
}

// TaxParams wraps a parameter set with the grow factor tables and serves as
// its IndexRater. It is not safe for concurrent adjustment; callers that
// share one instance across goroutines must serialize Adjust calls.
type TaxParams struct {
	params  *params.Parameters
	factors *GrowFactors

	// inflation caches the effective rates (price inflation plus the
	// current CPI_offset series). Rebuilt lazily after each adjustment.
	inflation map[int]float64
}

// Option configures construction of a TaxParams.
type Option func(*config)

type config struct {
	loadOpts []params.Option
	factors  *GrowFactors
}

// WithDefaults forwards options to the defaults loader, e.g. to read the
// policy file from a custom filesystem instead of the embedded one.
func WithDefaults(opts ...params.Option) Option {
	return func(c *config) {
		c.loadOpts = append(c.loadOpts, opts...)
	}
}

// WithGrowFactors overrides the embedded grow factor tables.
func WithGrowFactors(gf *GrowFactors) Option {
	return func(c *config) {
		c.factors = gf
	}
}

// New builds a TaxParams from the policy defaults and grow factor tables,
// projecting every parameter through the end of the budget window.
func New(opts ...Option) (*TaxParams, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	p, err := params.Load(cfg.loadOpts...)
	if err != nil {
		return nil, err
	}

	factors := cfg.factors
	if factors == nil {
		factors, err = LoadGrowFactors()
		if err != nil {
			return nil, err
		}
	}
	for y := p.StartYear(); y < p.EndYear(); y++ {
		if _, ok := factors.PriceInflation(y); !ok {
			return nil, errors.NewConfigError("taxparams", "grow factors do not cover the budget window", errors.NewMissingRateError("", y))
		}
	}

	tp := &TaxParams{params: p, factors: factors}
	p.SetIndexRater(tp)
	if err := p.ExtendAll(); err != nil {
		return nil, err
	}
	return tp, nil
}

// Params returns the underlying parameter set.
func (tp *TaxParams) Params() *params.Parameters {
	return tp.params
}

// StartYear returns the first valid year of the parameter set.
func (tp *TaxParams) StartYear() int { return tp.params.StartYear() }

// EndYear returns the last valid year of the parameter set.
func (tp *TaxParams) EndYear() int { return tp.params.EndYear() }

// ValueAt returns the named parameter's resolved value for the given year.
func (tp *TaxParams) ValueAt(name string, year int) (float64, error) {
	return tp.params.ValueAt(name, year)
}

// Values returns the named parameter's full resolved (year, value) series.
func (tp *TaxParams) Values(name string) ([]params.ValueObject, error) {
	return tp.params.Values(name)
}

// IndexRate returns the rate used to project the named parameter from the
// given year to the next: wage growth for wage-indexed parameters, the
// CPI-offset-adjusted inflation rate for everything else.
func (tp *TaxParams) IndexRate(param string, year int) (float64, error) {
	if wageIndexedParams[param] {
		r, ok := tp.factors.WageGrowth(year)
		if !ok {
			return 0, errors.NewMissingRateError(param, year)
		}
		return r, nil
	}

	if tp.inflation == nil {
		if err := tp.setRates(); err != nil {
			return 0, err
		}
	}
	r, ok := tp.inflation[year]
	if !ok {
		return 0, errors.NewMissingRateError(param, year)
	}
	return r, nil
}

// setRates rebuilds the effective inflation rates from the committed
// CPI_offset series.
func (tp *TaxParams) setRates() error {
	offsets, err := tp.currentOffsets()
	if err != nil {
		return err
	}
	tp.inflation = tp.factors.EffectiveInflation(offsets)
	return nil
}

// currentOffsets returns the committed CPI_offset value for every year.
// A parameter set without a CPI_offset indexes by the base rates alone.
func (tp *TaxParams) currentOffsets() (map[int]float64, error) {
	if !tp.params.Has(offsetKey) {
		return map[int]float64{}, nil
	}
	vos, err := tp.params.Values(offsetKey)
	if err != nil {
		return nil, err
	}
	offsets := make(map[int]float64, len(vos))
	for _, vo := range vos {
		offsets[vo.Year] = vo.Value
	}
	return offsets, nil
}
