package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSchema builds a small synthetic schema covering every facet kind.
func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema([]FilterDefinition{
		{Key: "q", DisplayName: "Searching for", Kind: FacetText},
		{
			Key: GameFacetKey, DisplayName: "Games", Kind: FacetExact,
			CanAggregate: true, SortWeight: 1,
			EnumeratedValues: []EnumeratedValue{
				{Value: "nl", Label: "New Leaf"},
				{Value: "ww", Label: "Wild World"},
			},
		},
		{
			Key: "species", DisplayName: "Species", Kind: FacetExact,
			CanAggregate: true, SortWeight: 2,
			EnumeratedValues: []EnumeratedValue{
				{Value: "cat", Label: "Cat"},
				{Value: "dog", Label: "Dog"},
			},
		},
		{
			Key: "personality", DisplayName: "Personality", Kind: FacetGameDependent,
			CanAggregate: true, SortWeight: 3,
			EnumeratedValues: []EnumeratedValue{
				{Value: "lazy", Label: "Lazy"},
				{Value: "jock", Label: "Jock"},
			},
		},
		{
			Key: "tag", DisplayName: "Tags", Kind: FacetExact,
			CanAggregate: true, SortWeight: 4,
		},
	})
	require.NoError(t, err)
	return s
}

func TestNewSchema_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		defs    []FilterDefinition
		wantErr string
	}{
		{
			name: "duplicate keys rejected",
			defs: []FilterDefinition{
				{Key: "q", Kind: FacetText},
				{Key: "species"},
				{Key: "species"},
			},
			wantErr: "duplicate filter key",
		},
		{
			name: "empty key rejected",
			defs: []FilterDefinition{
				{Key: "q", Kind: FacetText},
				{Key: ""},
			},
			wantErr: "empty key",
		},
		{
			name: "missing text facet rejected",
			defs: []FilterDefinition{
				{Key: "species"},
			},
			wantErr: "no text-search facet",
		},
		{
			name: "second text facet rejected",
			defs: []FilterDefinition{
				{Key: "q", Kind: FacetText},
				{Key: "q2", Kind: FacetText},
			},
			wantErr: "multiple text-search facets",
		},
		{
			name: "game-dependent facet without game facet rejected",
			defs: []FilterDefinition{
				{Key: "q", Kind: FacetText},
				{Key: "personality", Kind: FacetGameDependent},
			},
			wantErr: `require a "game" facet`,
		},
		{
			name: "game facet without enumerated values rejected",
			defs: []FilterDefinition{
				{Key: "q", Kind: FacetText},
				{Key: GameFacetKey},
				{Key: "personality", Kind: FacetGameDependent},
			},
			wantErr: "must enumerate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.defs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()

	assert.Equal(t, "q", s.TextKey())

	game, ok := s.Definition(GameFacetKey)
	require.True(t, ok)
	assert.True(t, game.CanAggregate)
	assert.NotEmpty(t, game.EnumeratedValues)

	personality, ok := s.Definition("personality")
	require.True(t, ok)
	assert.Equal(t, FacetGameDependent, personality.Kind)

	// Declaration order is the deterministic query composition order.
	assert.Equal(t, []string{"q", "game", "gender", "personality", "species", "zodiac"}, s.Keys())
}

func TestFilterDefinition_Label(t *testing.T) {
	s := testSchema(t)

	species, _ := s.Definition("species")
	label, ok := species.Label("cat")
	assert.True(t, ok)
	assert.Equal(t, "Cat", label)

	_, ok = species.Label("unlisted")
	assert.False(t, ok, "enumerated facets only accept listed values")

	tag, _ := s.Definition("tag")
	label, ok = tag.Label("anything")
	assert.True(t, ok)
	assert.Equal(t, "anything", label, "facets without a value map use the raw key as label")
}
