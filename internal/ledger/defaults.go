package ledger

import "fintrack/internal/core"

var defaultCategorySeed = []struct{ name, color string }{
	{"Housing", "#0ea5e9"},
	{"Food", "#22c55e"},
	{"Transportation", "#f97316"},
	{"Entertainment", "#a855f7"},
	{"Healthcare", "#ef4444"},
	{"Utilities", "#14b8a6"},
	{"Shopping", "#ec4899"},
	{"Education", "#6366f1"},
	{"Salary", "#22c55e"},
	{"Investment", "#0ea5e9"},
	{"Other", "#94a3b8"},
}

// DefaultCategories returns the starter categories, each with a fresh id.
func DefaultCategories(newID func() string) []core.Category {
	out := make([]core.Category, 0, len(defaultCategorySeed))
	for _, c := range defaultCategorySeed {
		out = append(out, core.Category{ID: newID(), Name: c.name, Color: c.color})
	}
	return out
}

// DefaultUser is the profile used until the user edits their settings.
func DefaultUser() core.User {
	return core.User{
		ID:       "1",
		Name:     "User",
		Email:    "user@example.com",
		Currency: "USD",
		Preferences: core.Preferences{
			ThemeMode:   core.ThemeSystem,
			ColorScheme: core.SchemeBlue,
		},
	}
}
