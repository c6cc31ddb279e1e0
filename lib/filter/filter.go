package filter

import (
	"encoding/json"

	"github.com/samber/oops"
)

// Filter scopes a subscription to matching events. It has two shapes: the
// structured fields below, or the Raw escape hatch for query dimensions this
// package does not model. When Raw is non-nil it wins and the structured
// fields are ignored; both shapes serialize to the same flat JSON object, so
// relays cannot tell them apart.
type Filter struct {
	IDs     []string
	Authors []string
	Kinds   []int
	Since   *int64
	Until   *int64
	Limit   int

	// Raw holds arbitrary query dimensions (for example tag queries such
	// as "#e") keyed by their wire name.
	Raw map[string][]string
}

// wireFilter is the structured variant's JSON shape.
type wireFilter struct {
	IDs     []string `json:"ids,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Kinds   []int    `json:"kinds,omitempty"`
	Since   *int64   `json:"since,omitempty"`
	Until   *int64   `json:"until,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// MarshalJSON serializes either variant to the flat wire object.
func (f Filter) MarshalJSON() ([]byte, error) {
	if f.Raw != nil {
		data, err := json.Marshal(f.Raw)
		if err != nil {
			return nil, oops.Wrapf(err, "failed to marshal raw filter")
		}
		return data, nil
	}
	data, err := json.Marshal(wireFilter{
		IDs:     f.IDs,
		Authors: f.Authors,
		Kinds:   f.Kinds,
		Since:   f.Since,
		Until:   f.Until,
		Limit:   f.Limit,
	})
	if err != nil {
		return nil, oops.Wrapf(err, "failed to marshal filter")
	}
	return data, nil
}

// Timestamp is a convenience for filling Since and Until from a literal.
func Timestamp(t int64) *int64 { return &t }
