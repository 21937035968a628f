package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel-butler/product-trends/pkg/canon"
	"github.com/daniel-butler/product-trends/pkg/domain"
)

func TestRank(t *testing.T) {
	got := Rank([]string{"B", "A", "B", "C", "A", "B"}, 0)
	assert.Equal(t, []Entry{{"B", 3}, {"A", 2}, {"C", 1}}, got)
}

func TestRank_TiesKeepFirstSeenOrder(t *testing.T) {
	names := []string{"Zeta", "Alpha", "Mid", "Alpha", "Zeta", "Mid"}
	want := []Entry{{"Zeta", 2}, {"Alpha", 2}, {"Mid", 2}}

	for i := 0; i < 20; i++ {
		assert.Equal(t, want, Rank(names, 0))
	}
}

func TestRank_TopN(t *testing.T) {
	got := Rank([]string{"a", "b", "b", "c", "c", "c"}, 2)
	assert.Equal(t, []Entry{{"c", 3}, {"b", 2}}, got)

	assert.Len(t, Rank([]string{"a"}, 5), 1)
}

func TestRank_Empty(t *testing.T) {
	got := Rank(nil, 30)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_PhonesEndToEnd(t *testing.T) {
	reg, err := domain.NewRegistry(nil)
	require.NoError(t, err)
	phones, err := reg.Get(domain.Phones)
	require.NoError(t, err)

	names, failed := canon.NewResolver(phones.Rules, nil).ResolveAll(
		[]string{"s24 ultra", "s24 ultra", "iphone 15 pro", "unknownwidget"},
	)
	require.Zero(t, failed)

	assert.Equal(t, []Entry{
		{"Samsung Galaxy S24 Ultra", 2},
		{"iPhone 15 Pro", 1},
		{"Unknownwidget", 1},
	}, Rank(names, phones.TopN))
}

func TestRising(t *testing.T) {
	current := map[string]int{
		"Hot":      9, // 3 -> 9, velocity 2.0
		"Rising":   4, // 2 -> 4, velocity 1.0
		"Flat":     5, // 5 -> 5
		"Brand":    3, // new
		"Once":     1, // new but too small
		"Tiny":     2, // 1 -> 2, velocity 1.0, current < 3
		"Shrinker": 1,
	}
	previous := map[string]int{
		"Hot":      3,
		"Rising":   2,
		"Flat":     5,
		"Tiny":     1,
		"Shrinker": 4,
		"Gone":     7,
	}

	got := Rising(current, previous, 0)

	byName := make(map[string]Mover)
	for _, m := range got {
		byName[m.Name] = m
	}
	require.Len(t, got, 4)
	assert.Equal(t, StatusHot, byName["Hot"].Status)
	assert.Equal(t, StatusRising, byName["Rising"].Status)
	assert.Equal(t, StatusNew, byName["Brand"].Status)
	assert.Equal(t, StatusRising, byName["Tiny"].Status)
	assert.NotContains(t, byName, "Flat")
	assert.NotContains(t, byName, "Once")
	assert.NotContains(t, byName, "Gone")

	assert.Equal(t, "Brand", got[0].Name, "velocity 3.0")
	assert.Equal(t, "Hot", got[1].Name, "velocity 2.0")
	assert.Equal(t, "Rising", got[2].Name, "velocity 1.0, ties by name")
	assert.Equal(t, "Tiny", got[3].Name)
}

func TestRising_Limit(t *testing.T) {
	got := Rising(map[string]int{"a": 5, "b": 4, "c": 3}, nil, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b", got[1].Name)
}
