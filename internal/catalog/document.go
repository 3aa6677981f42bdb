// Package catalog validates source catalog entities and maintains the
// search index the browse engine reads from.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Entity types accepted by the catalog.
const (
	TypeVillager = "villager"
	TypeItem     = "item"
)

// GameValue is one element of a game-scoped nested field, pairing a game
// identifier with the value the entity carries in that game.
type GameValue struct {
	Game  string `json:"game"`
	Value string `json:"value"`
}

// Document is the shape stored in the search index. Field names line up
// with the facet keys the browse engine queries.
type Document struct {
	Type        string      `json:"type"`
	Keyword     string      `json:"keyword"`
	Name        string      `json:"name"`
	URL         string      `json:"url"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	Games       []string    `json:"game"`
	Phrases     []string    `json:"phrase,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	Species     string      `json:"species,omitempty"`
	Zodiac      string      `json:"zodiac,omitempty"`
	Personality []GameValue `json:"personality,omitempty"`
	Category    string      `json:"category,omitempty"`
}

// DocumentID returns the index document identifier.
func (d *Document) DocumentID() string {
	return d.Type + "-" + d.Keyword
}

// BuildVillagerDocument maps a validated villager entity onto its index
// document. The games map drives both the game list and the per-game
// personality pairs; the zodiac sign is derived from the birthday.
func BuildVillagerDocument(entity map[string]interface{}) (*Document, error) {
	id, _ := entity["id"].(string)
	name, _ := entity["name"].(string)
	if id == "" || name == "" {
		return nil, fmt.Errorf("villager entity missing id or name")
	}

	doc := &Document{
		Type:     TypeVillager,
		Keyword:  strings.ToLower(name),
		Name:     name,
		URL:      "/villager/" + id,
		ImageURL: "/images/villagers/" + id + ".png",
	}
	doc.Gender, _ = entity["gender"].(string)
	doc.Species, _ = entity["species"].(string)

	if birthday, ok := entity["birthday"].(string); ok && birthday != "" {
		sign, err := ZodiacSign(birthday)
		if err != nil {
			return nil, err
		}
		doc.Zodiac = sign
	}

	games, _ := entity["games"].(map[string]interface{})
	doc.Games = sortedGameIDs(games)
	seenPhrases := map[string]bool{}
	for _, gameID := range doc.Games {
		gameData, _ := games[gameID].(map[string]interface{})
		if personality, ok := gameData["personality"].(string); ok && personality != "" {
			doc.Personality = append(doc.Personality, GameValue{Game: gameID, Value: strings.ToLower(personality)})
		}
		// Catchphrases feed the fuzzy text-search clause.
		if phrase, ok := gameData["phrase"].(string); ok && phrase != "" && !seenPhrases[phrase] {
			seenPhrases[phrase] = true
			doc.Phrases = append(doc.Phrases, phrase)
		}
	}

	return doc, nil
}

// BuildItemDocument maps a validated item entity onto its index document.
func BuildItemDocument(entity map[string]interface{}) (*Document, error) {
	id, _ := entity["id"].(string)
	name, _ := entity["name"].(string)
	if id == "" || name == "" {
		return nil, fmt.Errorf("item entity missing id or name")
	}

	doc := &Document{
		Type:     TypeItem,
		Keyword:  strings.ToLower(name),
		Name:     name,
		URL:      "/item/" + id,
		ImageURL: "/images/items/" + id + ".png",
	}
	doc.Category, _ = entity["category"].(string)

	games, _ := entity["games"].(map[string]interface{})
	doc.Games = sortedGameIDs(games)

	return doc, nil
}

func sortedGameIDs(games map[string]interface{}) []string {
	ids := make([]string, 0, len(games))
	for id := range games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// zodiacBoundaries holds, per month, the last day belonging to the sign
// that started in the previous month, and the two candidate signs.
var zodiacBoundaries = [12]struct {
	lastDay       int
	before, after string
}{
	{19, "capricorn", "aquarius"},
	{18, "aquarius", "pisces"},
	{20, "pisces", "aries"},
	{19, "aries", "taurus"},
	{20, "taurus", "gemini"},
	{20, "gemini", "cancer"},
	{22, "cancer", "leo"},
	{22, "leo", "virgo"},
	{22, "virgo", "libra"},
	{22, "libra", "scorpio"},
	{21, "scorpio", "sagittarius"},
	{21, "sagittarius", "capricorn"},
}

// ZodiacSign derives the star sign from a birthday in "MM-DD" form.
func ZodiacSign(birthday string) (string, error) {
	parts := strings.SplitN(birthday, "-", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid birthday %q: want MM-DD", birthday)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("invalid birthday %q: bad month", birthday)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("invalid birthday %q: bad day", birthday)
	}

	boundary := zodiacBoundaries[month-1]
	if day <= boundary.lastDay {
		return boundary.before, nil
	}
	return boundary.after, nil
}
