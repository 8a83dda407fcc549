package valueobjects

// VariantConfig is one stylistic framing requested in parallel with the others.
type VariantConfig struct {
	Name    string
	Style   string
	Setting string
}

// DefaultVariants are requested for every try-on.
var DefaultVariants = []VariantConfig{
	{
		Name:    "studio",
		Style:   "high-fidelity studio photography",
		Setting: "neutral catalog background",
	},
	{
		Name:    "outdoor",
		Style:   "realistic urban photography",
		Setting: "outdoor setting with natural lighting",
	},
}
