package category

import "strings"

// PredefinedPrefix marks the stable keys of the built-in main categories.
const PredefinedPrefix = "predefined-"

// Preset describes one built-in main category.
type Preset struct {
	Key   string
	Name  string
	Color string
	Icon  string
}

// Predefined is the fixed set of main categories every user starts with, in
// display order.
var Predefined = []Preset{
	{Key: "predefined-worship-spiritual", Name: "Worship & Spiritual", Color: "#8B5CF6", Icon: "🙏"},
	{Key: "predefined-study-learning", Name: "Study & Learning", Color: "#3B82F6", Icon: "📚"},
	{Key: "predefined-work-income", Name: "Work / Income", Color: "#10B981", Icon: "💼"},
	{Key: "predefined-personal-projects", Name: "Personal Projects", Color: "#F59E0B", Icon: "🚀"},
	{Key: "predefined-opportunities-challenges", Name: "Opportunities & Challenges", Color: "#EF4444", Icon: "🎯"},
	{Key: "predefined-family-relationships", Name: "Family & Relationships", Color: "#EC4899", Icon: "👨‍👩‍👧‍👦"},
	{Key: "predefined-self-care-rest", Name: "Self-Care & Rest", Color: "#06B6D4", Icon: "🧘"},
	{Key: "predefined-admin-miscellaneous", Name: "Admin & Miscellaneous", Color: "#6B7280", Icon: "⚙️"},
}

// IsPredefined reports whether key belongs to a built-in main category.
func IsPredefined(key string) bool {
	return strings.HasPrefix(key, PredefinedPrefix)
}

func presetFor(key string) (Preset, bool) {
	for _, p := range Predefined {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

type Option struct {
	Value string
	Label string
	Glyph string
}

const (
	DefaultColor = "#3B82F6"
	DefaultIcon  = "default"
)

var IconOptions = []Option{
	{Value: "default", Label: "Default", Glyph: "📋"},
	{Value: "study", Label: "Study", Glyph: "📚"},
	{Value: "work", Label: "Work", Glyph: "💼"},
	{Value: "exercise", Label: "Exercise", Glyph: "🏃"},
	{Value: "prayer", Label: "Prayer", Glyph: "🙏"},
	{Value: "family", Label: "Family", Glyph: "👨‍👩‍👧‍👦"},
	{Value: "health", Label: "Health", Glyph: "🏥"},
	{Value: "hobby", Label: "Hobby", Glyph: "🎨"},
	{Value: "social", Label: "Social", Glyph: "👥"},
	{Value: "admin", Label: "Admin", Glyph: "⚙️"},
}

var ColorOptions = []Option{
	{Value: "#3B82F6", Label: "Blue"},
	{Value: "#10B981", Label: "Green"},
	{Value: "#F59E0B", Label: "Yellow"},
	{Value: "#EF4444", Label: "Red"},
	{Value: "#8B5CF6", Label: "Purple"},
	{Value: "#EC4899", Label: "Pink"},
	{Value: "#06B6D4", Label: "Cyan"},
	{Value: "#6B7280", Label: "Gray"},
	{Value: "#059669", Label: "Emerald"},
	{Value: "#DC2626", Label: "Crimson"},
	{Value: "#7C3AED", Label: "Violet"},
	{Value: "#F97316", Label: "Orange"},
	{Value: "#0891B2", Label: "Sky"},
	{Value: "#BE185D", Label: "Rose"},
}

// Glyph returns the display glyph for an icon tag. Tags that are not one of
// the options (predefined categories store the glyph itself) are returned
// unchanged.
func Glyph(icon string) string {
	for _, o := range IconOptions {
		if o.Value == icon {
			return o.Glyph
		}
	}
	if icon == "" {
		return IconOptions[0].Glyph
	}
	return icon
}
