// Package params implements a generic per-year parameter store: definitions
// are loaded from yaml defaults, adjustments are validated and merged into
// each parameter's value anchors, and gaps are projected across the full
// year range using each parameter's indexed status and an IndexRater.
//
// The package knows nothing about tax policy. Domain rules for how indexing
// interacts with rate changes live in the taxparams package, which resolves
// an adjustment before handing it to Apply.
package params

import (
	"io/fs"
	"os"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/pslmodels/taxparams/internal/embedded"
	"github.com/pslmodels/taxparams/pkg/errors"
)

// Parameters is a set of parameters sharing one valid year range.
type Parameters struct {
	startYear int
	endYear   int
	defs      map[string]*Definition
	resolved  map[string][]float64 // full series per parameter, index 0 == startYear
	rater     IndexRater
}

// loadOptions holds the configuration for Load.
type loadOptions struct {
	readFS fs.FS
	file   string
}

// Option configures loading of a parameter set.
type Option func(*loadOptions)

// WithFS configures loading from a custom fs.FS.
func WithFS(fsys fs.FS) Option {
	return func(o *loadOptions) {
		o.readFS = fsys
	}
}

// WithPath configures loading from a directory path.
func WithPath(path string) Option {
	return func(o *loadOptions) {
		o.readFS = os.DirFS(path)
	}
}

// WithEmbedded configures loading from the embedded policy defaults.
// This is the default when no filesystem option is given.
func WithEmbedded() Option {
	return func(o *loadOptions) {
		if sub, err := fs.Sub(embedded.FS, "policy"); err == nil {
			o.readFS = sub
		} else {
			o.readFS = embedded.FS
		}
	}
}

// WithFile sets the defaults file name read from the configured filesystem.
func WithFile(name string) Option {
	return func(o *loadOptions) {
		o.file = name
	}
}

// defaultsFile is the on-disk shape of a parameter defaults document.
type defaultsFile struct {
	Schema struct {
		StartYear int `yaml:"start_year"`
		EndYear   int `yaml:"end_year"`
	} `yaml:"schema"`
	Parameters map[string]defaultsEntry `yaml:"parameters"`
}

type defaultsEntry struct {
	Title     string        `yaml:"title"`
	Indexable bool          `yaml:"indexable"`
	Indexed   *bool         `yaml:"indexed"`
	Values    []ValueObject `yaml:"values"`
}

// Load builds a parameter set from yaml defaults. Every definition is
// validated against the schema's year range; projection of gap years is
// deferred until an IndexRater is attached (see SetIndexRater and ExtendAll).
func Load(opts ...Option) (*Parameters, error) {
	options := &loadOptions{file: "policy.yaml"}
	WithEmbedded()(options)
	for _, opt := range opts {
		opt(options)
	}

	data, err := fs.ReadFile(options.readFS, options.file)
	if err != nil {
		return nil, errors.NewConfigError("params", "reading defaults "+options.file, err)
	}

	var df defaultsFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, errors.WrapParse("yaml", options.file, err)
	}

	if df.Schema.StartYear == 0 || df.Schema.EndYear < df.Schema.StartYear {
		return nil, errors.NewConfigError("params", "defaults schema has an invalid year range", nil)
	}

	p := &Parameters{
		startYear: df.Schema.StartYear,
		endYear:   df.Schema.EndYear,
		defs:      make(map[string]*Definition, len(df.Parameters)),
		resolved:  make(map[string][]float64, len(df.Parameters)),
	}

	for name, entry := range df.Parameters {
		def := &Definition{
			Name:      name,
			Title:     entry.Title,
			Indexable: entry.Indexable,
			Values:    append([]ValueObject(nil), entry.Values...),
		}
		if entry.Indexed != nil {
			if !entry.Indexable {
				return nil, errors.NewValidationError(name, 0, "indexed status on a non-indexable parameter")
			}
			def.Indexed = []IndexedStatus{{Year: p.startYear, Indexed: *entry.Indexed}}
		}
		if err := p.validateDefinition(def); err != nil {
			return nil, err
		}
		p.defs[name] = def
	}

	return p, nil
}

// validateDefinition checks a definition's values against the year range.
func (p *Parameters) validateDefinition(def *Definition) error {
	if len(def.Values) == 0 {
		return errors.NewValidationError(def.Name, 0, "no values")
	}
	if def.Values[0].Year != p.startYear {
		return errors.NewValidationError(def.Name, def.Values[0].Year, "first value must be for the start year")
	}
	prev := p.startYear - 1
	for _, vo := range def.Values {
		if vo.Year < p.startYear || vo.Year > p.endYear {
			return errors.NewRangeError(def.Name, vo.Year, p.startYear, p.endYear)
		}
		if vo.Year <= prev {
			return errors.NewValidationError(def.Name, vo.Year, "value years must be strictly increasing")
		}
		prev = vo.Year
	}
	return nil
}

// StartYear returns the first valid year of the parameter set.
func (p *Parameters) StartYear() int { return p.startYear }

// EndYear returns the last valid year of the parameter set.
func (p *Parameters) EndYear() int { return p.endYear }

// Has reports whether the named parameter exists.
func (p *Parameters) Has(name string) bool {
	_, ok := p.defs[name]
	return ok
}

// Names returns all parameter names in sorted order.
func (p *Parameters) Names() []string {
	names := make([]string, 0, len(p.defs))
	for name := range p.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the named parameter's definition. The returned value
// is owned by the set and must not be mutated by callers.
func (p *Parameters) Definition(name string) (*Definition, error) {
	def, ok := p.defs[name]
	if !ok {
		return nil, errors.NewNotFoundError("parameter", name)
	}
	return def, nil
}

// IndexedAt reports the named parameter's indexed flag for the given year.
func (p *Parameters) IndexedAt(name string, year int) (bool, error) {
	def, err := p.Definition(name)
	if err != nil {
		return false, err
	}
	return def.IndexedAt(year), nil
}

// ValueAt returns the named parameter's resolved value for the given year,
// projecting the series first if needed.
func (p *Parameters) ValueAt(name string, year int) (float64, error) {
	if year < p.startYear || year > p.endYear {
		return 0, errors.NewRangeError(name, year, p.startYear, p.endYear)
	}
	series, err := p.series(name)
	if err != nil {
		return 0, err
	}
	return series[year-p.startYear], nil
}

// Values returns the named parameter's full resolved (year, value) series.
func (p *Parameters) Values(name string) ([]ValueObject, error) {
	series, err := p.series(name)
	if err != nil {
		return nil, err
	}
	out := make([]ValueObject, len(series))
	for i, v := range series {
		out[i] = ValueObject{Year: p.startYear + i, Value: v}
	}
	return out, nil
}

// series returns the resolved per-year values, extending on first use.
func (p *Parameters) series(name string) ([]float64, error) {
	if series, ok := p.resolved[name]; ok {
		return series, nil
	}
	if err := p.Extend(name); err != nil {
		return nil, err
	}
	return p.resolved[name], nil
}
