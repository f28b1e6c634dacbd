package models

// Range is an inclusive interval. A Range with Min > Max contains nothing.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// FilterCriteria is a snapshot of the sidebar selections.
type FilterCriteria struct {
	Neighbourhoods  []string `json:"neighbourhoods"`
	RoomTypes       []string `json:"room_types"`
	Price           Range    `json:"price"`
	Availability    Range    `json:"availability"`
	ReviewsPerMonth Range    `json:"reviews_per_month"`
}

// Clone returns a copy that shares no slices with c.
func (c FilterCriteria) Clone() FilterCriteria {
	out := c
	out.Neighbourhoods = append([]string(nil), c.Neighbourhoods...)
	out.RoomTypes = append([]string(nil), c.RoomTypes...)
	return out
}
