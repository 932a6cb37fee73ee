package taxparams

import (
	"io/fs"
	"math"

	"github.com/goccy/go-yaml"

	"github.com/pslmodels/taxparams/internal/embedded"
	"github.com/pslmodels/taxparams/pkg/errors"
)

// GrowFactors holds the per-year price inflation and wage growth rates used
// to project indexed parameters. A rate for year y applies to the transition
// from y to y+1.
type GrowFactors struct {
	inflation map[int]float64
	wage      map[int]float64
}

// growFactorsFile is the on-disk shape of the grow factor tables.
type growFactorsFile struct {
	Years []struct {
		Year           int     `yaml:"year"`
		PriceInflation float64 `yaml:"price_inflation"`
		WageGrowth     float64 `yaml:"wage_growth"`
	} `yaml:"years"`
}

// NewGrowFactors builds grow factor tables from explicit rate maps.
func NewGrowFactors(inflation, wage map[int]float64) *GrowFactors {
	gf := &GrowFactors{
		inflation: make(map[int]float64, len(inflation)),
		wage:      make(map[int]float64, len(wage)),
	}
	for y, r := range inflation {
		gf.inflation[y] = r
	}
	for y, r := range wage {
		gf.wage[y] = r
	}
	return gf
}

// LoadGrowFactors reads the embedded grow factor tables.
func LoadGrowFactors() (*GrowFactors, error) {
	data, err := fs.ReadFile(embedded.FS, "policy/growfactors.yaml")
	if err != nil {
		return nil, errors.NewConfigError("taxparams", "reading grow factors", err)
	}
	return ReadGrowFactors(data)
}

// ReadGrowFactors parses grow factor tables from a raw yaml document.
func ReadGrowFactors(data []byte) (*GrowFactors, error) {
	var gff growFactorsFile
	if err := yaml.Unmarshal(data, &gff); err != nil {
		return nil, errors.WrapParse("yaml", "growfactors.yaml", err)
	}

	gf := &GrowFactors{
		inflation: make(map[int]float64, len(gff.Years)),
		wage:      make(map[int]float64, len(gff.Years)),
	}
	for _, row := range gff.Years {
		gf.inflation[row.Year] = row.PriceInflation
		gf.wage[row.Year] = row.WageGrowth
	}
	return gf, nil
}

// PriceInflation returns the base price inflation rate for the given year.
func (g *GrowFactors) PriceInflation(year int) (float64, bool) {
	r, ok := g.inflation[year]
	return r, ok
}

// WageGrowth returns the wage growth rate for the given year.
func (g *GrowFactors) WageGrowth(year int) (float64, bool) {
	r, ok := g.wage[year]
	return r, ok
}

// EffectiveInflation combines the base price inflation rates with a per-year
// CPI offset. Rates are rounded to four decimal places, the precision the
// published tables carry.
func (g *GrowFactors) EffectiveInflation(offsets map[int]float64) map[int]float64 {
	eff := make(map[int]float64, len(g.inflation))
	for year, base := range g.inflation {
		eff[year] = round4(base + offsets[year])
	}
	return eff
}

// round4 rounds to four decimal places.
func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// round2 rounds to two decimal places, matching the precision of published
// parameter values.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
