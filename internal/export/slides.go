package export

import (
	"fmt"
	"strings"

	"github.com/presenterapp/presenter/internal/domain"
)

// RuleFor returns the rule targeting section, compared case-insensitively,
// or the template's default rule.
func RuleFor(tmpl domain.PresentationTemplate, section string) domain.SlideRule {
	for _, r := range tmpl.Rules {
		if strings.EqualFold(r.TargetType, section) {
			return r
		}
	}
	return tmpl.DefaultRule
}

// Slides lays sections out as slides titled "{title} ({section})".
func Slides(title string, sections []Section, tmpl domain.PresentationTemplate) []domain.SlideDefinition {
	var slides []domain.SlideDefinition
	for _, s := range sections {
		rule := RuleFor(tmpl, s.Name)
		per := rule.LinesPerSlide
		if per <= 0 {
			per = len(s.Lines)
		}

		for start := 0; start < len(s.Lines); start += per {
			end := min(start+per, len(s.Lines))
			slides = append(slides, domain.SlideDefinition{
				Title:    fmt.Sprintf("%s (%s)", title, s.Name),
				Lines:    append([]string(nil), s.Lines[start:end]...),
				IsBold:   rule.IsBold,
				FontSize: rule.FontSize,
			})
		}
	}
	return slides
}
