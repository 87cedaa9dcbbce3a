package export

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/presenterapp/presenter/internal/domain"
)

// Writer renders a deck into some document format.
type Writer interface {
	Write(w io.Writer, deck *domain.Deck) error
	// Extension is the file extension of the format, with the dot.
	Extension() string
}

// YAMLWriter writes the deck outline as YAML.
type YAMLWriter struct{}

// Write implements Writer.
func (YAMLWriter) Write(w io.Writer, deck *domain.Deck) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(deck); err != nil {
		return fmt.Errorf("failed to encode deck: %w", err)
	}
	return enc.Close()
}

// Extension implements Writer.
func (YAMLWriter) Extension() string { return ".yaml" }

// LoadTemplate reads a presentation template from a YAML file. An empty path
// yields domain.DefaultTemplate.
func LoadTemplate(path string) (domain.PresentationTemplate, error) {
	if path == "" {
		return domain.DefaultTemplate(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.PresentationTemplate{}, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	return DecodeTemplate(f)
}

// DecodeTemplate reads a YAML template from r.
func DecodeTemplate(r io.Reader) (domain.PresentationTemplate, error) {
	var tmpl domain.PresentationTemplate
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return domain.PresentationTemplate{}, fmt.Errorf("failed to parse template: %w", err)
	}
	for i, rule := range tmpl.Rules {
		if rule.TargetType == "" {
			return domain.PresentationTemplate{}, fmt.Errorf("rule %d: target_type is required", i)
		}
	}
	if tmpl.Name == "" {
		tmpl.Name = "custom"
	}
	return tmpl, nil
}
