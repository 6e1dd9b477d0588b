package domain

// Neutral display fallback for transactions whose category can no longer be resolved.
const (
	NeutralColor = "#94a3b8"
	NeutralIcon  = "circle"
)

// CategoryPreset describes one entry of the default category catalog.
type CategoryPreset struct {
	Name  string
	Color string
	Icon  string
}

// DefaultCategories is the immutable catalog seeded for every new user at signup.
// It is configuration, not a runtime source of truth: once seeded, the user's own
// Category rows are authoritative.
var DefaultCategories = []CategoryPreset{
	{Name: "Food & Dining", Color: "#f97316", Icon: "utensils"},
	{Name: "Transportation", Color: "#3b82f6", Icon: "car"},
	{Name: "Shopping", Color: "#ec4899", Icon: "shopping-bag"},
	{Name: "Entertainment", Color: "#a855f7", Icon: "film"},
	{Name: "Bills & Utilities", Color: "#eab308", Icon: "receipt"},
	{Name: "Housing", Color: "#14b8a6", Icon: "home"},
	{Name: "Healthcare", Color: "#ef4444", Icon: "heart-pulse"},
	{Name: "Education", Color: "#22c55e", Icon: "graduation-cap"},
	{Name: "Travel", Color: "#06b6d4", Icon: "plane"},
	{Name: "Personal Care", Color: "#8b5cf6", Icon: "sparkles"},
	{Name: "Other", Color: NeutralColor, Icon: NeutralIcon},
}
