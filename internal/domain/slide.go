package domain

// SlideRule controls how lines of one section type are laid out.
// LinesPerSlide <= 0 puts the whole section on a single slide.
type SlideRule struct {
	TargetType    string `json:"target_type" yaml:"target_type"`
	LinesPerSlide int    `json:"lines_per_slide" yaml:"lines_per_slide"`
	IsBold        bool   `json:"is_bold" yaml:"is_bold"`
	FontSize      int    `json:"font_size" yaml:"font_size"`
}

// PresentationTemplate is a named set of slide rules with a fallback rule
// for section types no rule targets.
type PresentationTemplate struct {
	Name        string      `json:"name" yaml:"name"`
	Rules       []SlideRule `json:"rules" yaml:"rules"`
	DefaultRule SlideRule   `json:"default_rule" yaml:"default_rule"`
}

// DefaultTemplate is used when no template is configured.
func DefaultTemplate() PresentationTemplate {
	return PresentationTemplate{
		Name: "default",
		Rules: []SlideRule{
			{TargetType: "Chorus", LinesPerSlide: 4, IsBold: true, FontSize: 40},
		},
		DefaultRule: SlideRule{LinesPerSlide: 4, FontSize: 36},
	}
}

// SlideDefinition is one output slide, independent of the deck format.
type SlideDefinition struct {
	Title    string   `json:"title" yaml:"title"`
	Lines    []string `json:"lines" yaml:"lines"`
	IsBold   bool     `json:"is_bold" yaml:"is_bold"`
	FontSize int      `json:"font_size" yaml:"font_size"`
}

// Deck is an ordered list of slides built from one or more content entries.
type Deck struct {
	Template string            `json:"template" yaml:"template"`
	Slides   []SlideDefinition `json:"slides" yaml:"slides"`
}
