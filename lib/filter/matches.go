package filter

import (
	"slices"
	"strings"

	"github.com/go-plume/go-plume/lib/event"
)

// Matches reports whether ev satisfies the filter's structured dimensions.
// It mirrors relay-side matching so callers can re-check deliveries locally.
// For a Raw filter only tag dimensions ("#" keys), "ids" and "authors" are
// evaluated; unrecognized dimensions are treated as satisfied.
func (f Filter) Matches(ev event.Event) bool {
	if f.Raw != nil {
		return f.matchesRaw(ev)
	}
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, ev.ID) {
		return false
	}
	if len(f.Authors) > 0 && !slices.Contains(f.Authors, ev.PubKey) {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, ev.Kind) {
		return false
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	return true
}

func (f Filter) matchesRaw(ev event.Event) bool {
	for key, values := range f.Raw {
		switch {
		case key == "ids":
			if len(values) > 0 && !slices.Contains(values, ev.ID) {
				return false
			}
		case key == "authors":
			if len(values) > 0 && !slices.Contains(values, ev.PubKey) {
				return false
			}
		case strings.HasPrefix(key, "#") && len(key) > 1:
			if len(values) > 0 && !eventHasTag(ev, key[1:], values) {
				return false
			}
		}
	}
	return true
}

func eventHasTag(ev event.Event, name string, values []string) bool {
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && tag[0] == name && slices.Contains(values, tag[1]) {
			return true
		}
	}
	return false
}
