package interpret

import "strings"

// Category is a coarse grouping of RPC method names.
type Category string

const (
	CategoryGameplay Category = "gameplay"
	CategoryDraft    Category = "draft"
	CategoryEconomy  Category = "economy"
	CategoryUI       Category = "ui"
	CategorySystem   Category = "system"
)

// categoryKeywords is checked in order; the first category with a matching
// keyword wins.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryGameplay, []string{"gamestate", "match", "gamestart", "gamestatemessage"}},
	{CategoryDraft, []string{"draft", "eventgetcourses", "event_join"}},
	{CategoryEconomy, []string{"quest", "inventory", "reward", "economy"}},
	{CategoryUI, []string{"ui", "screen", "dialog", "modal"}},
}

// Categorize buckets a method name by case-insensitive substring match.
// Names matching nothing are CategorySystem.
func Categorize(name string) Category {
	lower := strings.ToLower(name)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}
	return CategorySystem
}
