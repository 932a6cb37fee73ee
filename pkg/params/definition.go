package params

import "sort"

// ValueObject is one (year, value) entry in a parameter's value history.
type ValueObject struct {
	Year  int     `yaml:"year" json:"year"`
	Value float64 `yaml:"value" json:"value"`
}

// IndexedStatus records a parameter's indexed flag effective from Year forward.
type IndexedStatus struct {
	Year    int  `yaml:"year" json:"year"`
	Indexed bool `yaml:"value" json:"value"`
}

// Definition describes one parameter: its metadata, the years at which its
// indexed flag changes, and the explicitly specified (year, value) anchors.
// Years between anchors are projected by Extend; anchors are authoritative
// and never recomputed.
type Definition struct {
	Name      string
	Title     string
	Indexable bool
	Indexed   []IndexedStatus // sorted by year; empty means never indexed
	Values    []ValueObject   // sorted by year; explicit anchors, not the full series
}

// IndexedAt reports the indexed flag in effect for the given year.
// The latest status entry with a year at or before the given year wins.
func (d *Definition) IndexedAt(year int) bool {
	indexed := false
	for _, st := range d.Indexed {
		if st.Year > year {
			break
		}
		indexed = st.Indexed
	}
	return indexed
}

// Anchor returns the explicit value for the given year, if one exists.
func (d *Definition) Anchor(year int) (float64, bool) {
	for _, vo := range d.Values {
		if vo.Year == year {
			return vo.Value, true
		}
		if vo.Year > year {
			break
		}
	}
	return 0, false
}

// setIndexed merges indexed status entries into the flag series,
// replacing any entry already present for the same year.
func (d *Definition) setIndexed(entries []IndexedStatus) {
	for _, e := range entries {
		replaced := false
		for i, st := range d.Indexed {
			if st.Year == e.Year {
				d.Indexed[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			d.Indexed = append(d.Indexed, e)
		}
	}
	sort.Slice(d.Indexed, func(i, j int) bool { return d.Indexed[i].Year < d.Indexed[j].Year })
}

// mergeAnchors replaces the anchors from the earliest adjusted year forward.
// Anchors after that year are dropped so adjusted values become the new base
// for projection, mirroring how published values are superseded by a reform.
func (d *Definition) mergeAnchors(entries []ValueObject) {
	if len(entries) == 0 {
		return
	}
	from := entries[0].Year
	kept := d.Values[:0:0]
	for _, vo := range d.Values {
		if vo.Year < from {
			kept = append(kept, vo)
		}
	}
	d.Values = append(kept, entries...)
}
