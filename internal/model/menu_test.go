package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuAdd_DedupesCaseAndWhitespace(t *testing.T) {
	m := Menu{}
	m.Set("Pad Thai", "rice noodles")
	m.Set("  pad   thai ", "with shrimp")

	require.Len(t, m, 1)
	item, ok := m["pad thai"]
	require.True(t, ok, "later name wins")
	assert.Equal(t, "with shrimp", item.Description)
}

func TestMenuAdd_IgnoresBlankNames(t *testing.T) {
	m := Menu{}
	m.Set("   ", "nothing")
	assert.Empty(t, m)
}

func TestMenuAdd_TruncatesDescription(t *testing.T) {
	m := Menu{}
	long := make([]rune, MaxDescriptionLen+50)
	for i := range long {
		long[i] = 'é'
	}
	m.Set("Crêpe", string(long))
	assert.Equal(t, MaxDescriptionLen, len([]rune(m["Crêpe"].Description)))
}

func TestMenuMerge_NewKeysWin(t *testing.T) {
	cached := Menu{}
	cached.Set("A", "desc")
	cached.Set("Ramen", "old")

	incoming := Menu{}
	incoming.Set("B", "descB")
	incoming.Set("RAMEN", "new")

	merged := cached.Merge(incoming)

	assert.Equal(t, map[string]string{"A": "desc", "B": "descB", "RAMEN": "new"}, merged.Descriptions())
	assert.Len(t, cached, 2, "receiver is not mutated")
	assert.Equal(t, "old", cached["Ramen"].Description)
}

func TestMenuClone_IsDeep(t *testing.T) {
	no := false
	m := Menu{}
	m.Add(MenuItem{Name: "Soup", ItemAttributes: ItemAttributes{Available: &no}})

	c := m.Clone()
	*c["Soup"].Available = true

	assert.False(t, m["Soup"].IsAvailable())
}

func TestMenuAttributes_OmitsDefaults(t *testing.T) {
	m := Menu{}
	m.Set("Plain", "nothing special")
	assert.Nil(t, m.Attributes())

	m.Add(MenuItem{Name: "Hot Wings", ItemAttributes: ItemAttributes{Spicy: true}})
	attrs := m.Attributes()
	require.Len(t, attrs, 1)
	assert.True(t, attrs["Hot Wings"].Spicy)
}

func TestNormalize_Flat(t *testing.T) {
	m, err := Normalize([]byte(`{"Margherita Pizza": "thin crust", "Tiramisu": "very creamy", "price": 12}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Margherita Pizza": "thin crust", "Tiramisu": "very creamy"}, m.Descriptions())
}

func TestNormalize_Categorized(t *testing.T) {
	raw := `{
		"Mains": [
			{"name": "Kung Pao Chicken", "description": "spicy", "spicy": true, "available": true},
			{"name": "Sold Out Soup", "description": "gone", "available": false}
		],
		"Drinks": ["Thai Iced Tea"]
	}`
	m, err := Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, m, 3)

	kp := m["Kung Pao Chicken"]
	assert.Equal(t, "Mains", kp.Category)
	assert.True(t, kp.Spicy)
	assert.Nil(t, kp.Available, "explicit true is stored as default")

	assert.False(t, m["Sold Out Soup"].IsAvailable())
	assert.Equal(t, "Drinks", m["Thai Iced Tea"].Category)
}

func TestNormalize_ItemObjectsAndNested(t *testing.T) {
	raw := `{
		"Burger": {"description": "juicy", "popular": true},
		"Desserts": {"Cheesecake": "NY style"}
	}`
	m, err := Normalize([]byte(raw))
	require.NoError(t, err)

	assert.True(t, m["Burger"].Popular)
	assert.Equal(t, "juicy", m["Burger"].Description)
	assert.Equal(t, "Desserts", m["Cheesecake"].Category)
}

func TestNormalize_RejectsNonObject(t *testing.T) {
	_, err := Normalize([]byte(`["a", "b"]`))
	assert.Error(t, err)

	_, err = Normalize([]byte(`not json`))
	assert.Error(t, err)
}

func TestRecordJSON_FlatShape(t *testing.T) {
	m := Menu{}
	m.Set("A", "desc")
	m.Add(MenuItem{Name: "B", Description: "descB", ItemAttributes: ItemAttributes{Category: "Mains"}})

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	rec := CachedMenuRecord{
		RestaurantID:    "place-1",
		RestaurantName:  "Luigi's",
		Menu:            m,
		Source:          ProvenanceAIInitial,
		ReviewsAnalyzed: 5,
		LastUpdated:     now,
		CachedAt:        now,
	}

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(b, &generic))
	assert.Equal(t, map[string]any{"A": "desc", "B": "descB"}, generic["menu"])
	assert.Equal(t, "ai-initial", generic["source"])

	var back CachedMenuRecord
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "Mains", back.Menu["B"].Category)
	assert.True(t, back.CachedAt.Equal(now))
}

func TestRecordIsStale(t *testing.T) {
	now := time.Now()
	rec := &CachedMenuRecord{CachedAt: now.Add(-23 * time.Hour)}
	assert.False(t, rec.IsStale(now, 24*time.Hour))

	rec.CachedAt = now.Add(-25 * time.Hour)
	assert.True(t, rec.IsStale(now, 24*time.Hour))
}

func TestSortReviewsNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reviews := []Review{
		{Text: "old", PublishTime: base},
		{Text: "undated"},
		{Text: "new", PublishTime: base.Add(48 * time.Hour)},
	}
	SortReviewsNewestFirst(reviews)
	assert.Equal(t, "new", reviews[0].Text)
	assert.Equal(t, "old", reviews[1].Text)
	assert.Equal(t, "undated", reviews[2].Text)
}

func TestProfileReviewTexts(t *testing.T) {
	p := &RestaurantProfile{Reviews: []Review{{Text: "a"}, {Text: "b"}, {Text: "c"}}}
	assert.Equal(t, []string{"b", "c"}, p.ReviewTexts(1, 5))
	assert.Nil(t, p.ReviewTexts(3, 5))

	newest, ok := p.Newest()
	assert.True(t, ok)
	assert.Equal(t, "a", newest.Text)
}
