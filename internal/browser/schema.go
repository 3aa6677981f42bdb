// Package browser implements the faceted search pipeline behind the catalog's
// browse pages: sanitizing user filter input, composing the Elasticsearch
// boolean/aggregation request, and reshaping the response into a paginated,
// display-ready envelope.
package browser

import (
	"fmt"
)

// GameFacetKey is the cross-cutting facet whose selection gates which
// per-game sub-documents are visible to game-dependent facets.
const GameFacetKey = "game"

// FacetKind tells the query builder how a facet's values are matched.
type FacetKind int

const (
	// FacetExact matches the stored keyword value verbatim.
	FacetExact FacetKind = iota
	// FacetText runs analyzed/fuzzy text matching against the name fields.
	FacetText
	// FacetGameDependent matches inside {game, value} sub-documents nested
	// under the facet's own path.
	FacetGameDependent
)

func (k FacetKind) String() string {
	switch k {
	case FacetText:
		return "text"
	case FacetGameDependent:
		return "game-dependent"
	default:
		return "exact"
	}
}

// EnumeratedValue is one raw value / display label pair. Order matters: it is
// the display order of the facet's buckets.
type EnumeratedValue struct {
	Value string
	Label string
}

// FilterDefinition describes a single facet.
type FilterDefinition struct {
	Key              string
	DisplayName      string
	Kind             FacetKind
	CanAggregate     bool
	EnumeratedValues []EnumeratedValue
	SortWeight       int
}

// Label returns the display label for a raw bucket value, and whether the
// value is acceptable at all. Facets without an enumerated value map accept
// every value and use the raw value as its own label; facets with a map only
// accept listed values.
func (d *FilterDefinition) Label(value string) (string, bool) {
	if len(d.EnumeratedValues) == 0 {
		return value, true
	}
	for _, ev := range d.EnumeratedValues {
		if ev.Value == value {
			return ev.Label, true
		}
	}
	return "", false
}

// Schema is the process-wide immutable facet configuration. Construct it once
// at startup and pass it into every component; it is safe for concurrent
// reads.
type Schema struct {
	defs    []FilterDefinition
	byKey   map[string]*FilterDefinition
	ordered []string // facet keys in declaration order, for deterministic query payloads
	textKey string
}

// NewSchema validates the definitions and builds a Schema.
//
// Invariants enforced: keys are unique and non-empty, exactly one facet is the
// text-search facet, and if any facet is game-dependent the schema must also
// declare the game facet with enumerated values (its per-game aggregations
// need the full value list).
func NewSchema(defs []FilterDefinition) (*Schema, error) {
	s := &Schema{
		defs:  defs,
		byKey: make(map[string]*FilterDefinition, len(defs)),
	}

	hasGameDependent := false
	for i := range s.defs {
		def := &s.defs[i]
		if def.Key == "" {
			return nil, fmt.Errorf("filter definition %d has an empty key", i)
		}
		if _, dup := s.byKey[def.Key]; dup {
			return nil, fmt.Errorf("duplicate filter key %q", def.Key)
		}
		s.byKey[def.Key] = def
		s.ordered = append(s.ordered, def.Key)

		switch def.Kind {
		case FacetText:
			if s.textKey != "" {
				return nil, fmt.Errorf("multiple text-search facets: %q and %q", s.textKey, def.Key)
			}
			s.textKey = def.Key
		case FacetGameDependent:
			hasGameDependent = true
		}
	}

	if s.textKey == "" {
		return nil, fmt.Errorf("schema has no text-search facet")
	}

	if hasGameDependent {
		gameDef, ok := s.byKey[GameFacetKey]
		if !ok {
			return nil, fmt.Errorf("game-dependent facets require a %q facet", GameFacetKey)
		}
		if len(gameDef.EnumeratedValues) == 0 {
			return nil, fmt.Errorf("the %q facet must enumerate its values", GameFacetKey)
		}
	}

	return s, nil
}

// Definition returns the definition for a facet key.
func (s *Schema) Definition(key string) (*FilterDefinition, bool) {
	def, ok := s.byKey[key]
	return def, ok
}

// Keys returns all facet keys in declaration order.
func (s *Schema) Keys() []string {
	return s.ordered
}

// TextKey returns the key of the text-search facet.
func (s *Schema) TextKey() string {
	return s.textKey
}

// DefaultSchema returns the catalog's facet configuration.
func DefaultSchema() *Schema {
	s, err := NewSchema([]FilterDefinition{
		{
			Key:         "q",
			DisplayName: "Searching for",
			Kind:        FacetText,
		},
		{
			Key:          GameFacetKey,
			DisplayName:  "Games",
			Kind:         FacetExact,
			CanAggregate: true,
			SortWeight:   1,
			EnumeratedValues: []EnumeratedValue{
				{Value: "nl", Label: "New Leaf"},
				{Value: "cf", Label: "City Folk"},
				{Value: "ww", Label: "Wild World"},
				{Value: "afe+", Label: "Animal Forest e+"},
				{Value: "ac", Label: "Animal Crossing"},
				{Value: "af+", Label: "Animal Forest+"},
				{Value: "af", Label: "Animal Forest"},
			},
		},
		{
			Key:          "gender",
			DisplayName:  "Gender",
			Kind:         FacetExact,
			CanAggregate: true,
			SortWeight:   2,
			EnumeratedValues: []EnumeratedValue{
				{Value: "male", Label: "Male"},
				{Value: "female", Label: "Female"},
			},
		},
		{
			Key:          "personality",
			DisplayName:  "Personality",
			Kind:         FacetGameDependent,
			CanAggregate: true,
			SortWeight:   3,
			EnumeratedValues: []EnumeratedValue{
				{Value: "cranky", Label: "Cranky"},
				{Value: "jock", Label: "Jock"},
				{Value: "lazy", Label: "Lazy"},
				{Value: "normal", Label: "Normal"},
				{Value: "peppy", Label: "Peppy"},
				{Value: "smug", Label: "Smug"},
				{Value: "snooty", Label: "Snooty"},
				{Value: "uchi", Label: "Uchi"},
			},
		},
		{
			Key:          "species",
			DisplayName:  "Species",
			Kind:         FacetExact,
			CanAggregate: true,
			SortWeight:   4,
			EnumeratedValues: []EnumeratedValue{
				{Value: "alligator", Label: "Alligator"},
				{Value: "anteater", Label: "Anteater"},
				{Value: "bear", Label: "Bear"},
				{Value: "bird", Label: "Bird"},
				{Value: "bull", Label: "Bull"},
				{Value: "cat", Label: "Cat"},
				{Value: "chicken", Label: "Chicken"},
				{Value: "cow", Label: "Cow"},
				{Value: "cub", Label: "Cub"},
				{Value: "deer", Label: "Deer"},
				{Value: "dog", Label: "Dog"},
				{Value: "duck", Label: "Duck"},
				{Value: "eagle", Label: "Eagle"},
				{Value: "elephant", Label: "Elephant"},
				{Value: "frog", Label: "Frog"},
				{Value: "goat", Label: "Goat"},
				{Value: "gorilla", Label: "Gorilla"},
				{Value: "hamster", Label: "Hamster"},
				{Value: "hippo", Label: "Hippo"},
				{Value: "horse", Label: "Horse"},
				{Value: "kangaroo", Label: "Kangaroo"},
				{Value: "koala", Label: "Koala"},
				{Value: "lion", Label: "Lion"},
				{Value: "monkey", Label: "Monkey"},
				{Value: "mouse", Label: "Mouse"},
				{Value: "octopus", Label: "Octopus"},
				{Value: "ostrich", Label: "Ostrich"},
				{Value: "penguin", Label: "Penguin"},
				{Value: "pig", Label: "Pig"},
				{Value: "rabbit", Label: "Rabbit"},
				{Value: "rhino", Label: "Rhino"},
				{Value: "sheep", Label: "Sheep"},
				{Value: "squirrel", Label: "Squirrel"},
				{Value: "tiger", Label: "Tiger"},
				{Value: "wolf", Label: "Wolf"},
			},
		},
		{
			Key:          "zodiac",
			DisplayName:  "Star Sign",
			Kind:         FacetExact,
			CanAggregate: true,
			SortWeight:   5,
			EnumeratedValues: []EnumeratedValue{
				{Value: "aquarius", Label: "Aquarius"},
				{Value: "aries", Label: "Aries"},
				{Value: "cancer", Label: "Cancer"},
				{Value: "capricorn", Label: "Capricorn"},
				{Value: "gemini", Label: "Gemini"},
				{Value: "leo", Label: "Leo"},
				{Value: "libra", Label: "Libra"},
				{Value: "pisces", Label: "Pisces"},
				{Value: "sagittarius", Label: "Sagittarius"},
				{Value: "scorpio", Label: "Scorpio"},
				{Value: "taurus", Label: "Taurus"},
				{Value: "virgo", Label: "Virgo"},
			},
		},
	})
	if err != nil {
		panic(err) // static configuration, must be valid
	}
	return s
}
