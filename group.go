package profit

// Group is a named set of assets aggregated in reports (e.g. "retirement",
// "cash").
type Group struct {
	Name   string
	Assets []string // asset names
}

// Members returns the group's assets resolved against the known assets, in
// the group's order. Unknown names are skipped.
func (g Group) Members(assets []*Asset) []*Asset {
	byName := make(map[string]*Asset, len(assets))
	for _, a := range assets {
		byName[a.Name] = a
	}
	var members []*Asset
	for _, name := range g.Assets {
		if a, ok := byName[name]; ok {
			members = append(members, a)
		}
	}
	return members
}

// AggregateSeries sums value series day by day over tl.
//
// A day's aggregate excludes unavailable constituents rather than counting
// them as zero; the aggregated day itself is unavailable only when not a
// single constituent has a value, so that a total is always the sum of what
// is actually known. Aggregating aggregates is safe: the rule composes.
func AggregateSeries(name string, tl Timeline, series ...*Series) *Series {
	out := NewSeries(name)
	for day := range tl.Days() {
		sum, defined := 0.0, false
		for _, s := range series {
			if v, ok := s.Price(day); ok {
				sum += v
				defined = true
			}
		}
		if !defined {
			out.points.Append(day, Unavailable(day))
			continue
		}
		out.points.Append(day, Point(day, sum))
	}
	return out
}
