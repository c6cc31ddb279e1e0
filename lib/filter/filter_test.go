package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-plume/go-plume/lib/event"
)

func TestStructuredWireShape(t *testing.T) {
	f := Filter{
		Kinds:   []int{1, 30001},
		Authors: []string{"aa", "bb"},
		Limit:   10,
		Since:   Timestamp(1000),
	}
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kinds":[1,30001],"authors":["aa","bb"],"limit":10,"since":1000}`, string(data))
}

func TestEmptyFilterWireShape(t *testing.T) {
	data, err := json.Marshal(Filter{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestRawWireShapeMatchesStructured(t *testing.T) {
	raw := Filter{Raw: map[string][]string{"authors": {"aa", "bb"}}}
	structured := Filter{Authors: []string{"aa", "bb"}}

	rawData, err := json.Marshal(raw)
	require.NoError(t, err)
	structuredData, err := json.Marshal(structured)
	require.NoError(t, err)
	assert.JSONEq(t, string(structuredData), string(rawData))
}

func TestRawTagDimension(t *testing.T) {
	f := Filter{Raw: map[string][]string{"#e": {"some-id"}, "kinds": {"1"}}}
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"#e":["some-id"],"kinds":["1"]}`, string(data))
}

func TestMatchesStructured(t *testing.T) {
	ev := event.Event{
		ID:        "id1",
		PubKey:    "author1",
		CreatedAt: 500,
		Kind:      1,
		Tags:      [][]string{{"e", "ref1"}},
	}

	assert.True(t, Filter{}.Matches(ev))
	assert.True(t, Filter{Kinds: []int{1}}.Matches(ev))
	assert.False(t, Filter{Kinds: []int{0}}.Matches(ev))
	assert.True(t, Filter{Authors: []string{"author1"}}.Matches(ev))
	assert.False(t, Filter{Authors: []string{"author2"}}.Matches(ev))
	assert.True(t, Filter{IDs: []string{"id1"}}.Matches(ev))
	assert.False(t, Filter{IDs: []string{"id2"}}.Matches(ev))
	assert.True(t, Filter{Since: Timestamp(400), Until: Timestamp(600)}.Matches(ev))
	assert.False(t, Filter{Since: Timestamp(501)}.Matches(ev))
	assert.False(t, Filter{Until: Timestamp(499)}.Matches(ev))
}

func TestMatchesRaw(t *testing.T) {
	ev := event.Event{
		ID:     "id1",
		PubKey: "author1",
		Tags:   [][]string{{"e", "ref1"}, {"p", "peer1"}},
	}

	assert.True(t, Filter{Raw: map[string][]string{"#e": {"ref1"}}}.Matches(ev))
	assert.False(t, Filter{Raw: map[string][]string{"#e": {"ref2"}}}.Matches(ev))
	assert.True(t, Filter{Raw: map[string][]string{"authors": {"author1"}}}.Matches(ev))
	assert.False(t, Filter{Raw: map[string][]string{"ids": {"other"}}}.Matches(ev))
	// Dimensions the local matcher cannot evaluate are treated as satisfied.
	assert.True(t, Filter{Raw: map[string][]string{"search": {"anything"}}}.Matches(ev))
}
