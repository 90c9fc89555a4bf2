package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ImageStyle is a visual style offered for generated images.
type ImageStyle struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Description  string `yaml:"description" json:"description"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
	Model        string `yaml:"model" json:"model"`
}

type Voice struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Provider    string `yaml:"provider" json:"provider"`
	Description string `yaml:"description" json:"description"`
}

// Catalog lists the styles and voices a project may choose from.
type Catalog struct {
	DefaultStyle string       `yaml:"default_style" json:"default_style"`
	DefaultVoice string       `yaml:"default_voice" json:"default_voice"`
	Styles       []ImageStyle `yaml:"styles" json:"styles"`
	Voices       []Voice      `yaml:"voices" json:"voices"`
}

// LoadCatalog reads the catalog from path, or the built-in one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(c.Styles) == 0 {
		return nil, fmt.Errorf("catalog has no styles")
	}
	if len(c.Voices) == 0 {
		return nil, fmt.Errorf("catalog has no voices")
	}
	if c.DefaultStyle == "" {
		c.DefaultStyle = c.Styles[0].ID
	}
	if c.DefaultVoice == "" {
		c.DefaultVoice = c.Voices[0].ID
	}
	if _, ok := c.Style(c.DefaultStyle); !ok {
		return nil, fmt.Errorf("default style %q is not in the catalog", c.DefaultStyle)
	}
	if _, ok := c.Voice(c.DefaultVoice); !ok {
		return nil, fmt.Errorf("default voice %q is not in the catalog", c.DefaultVoice)
	}
	return &c, nil
}

func (c *Catalog) Style(id string) (ImageStyle, bool) {
	for _, s := range c.Styles {
		if s.ID == id {
			return s, true
		}
	}
	return ImageStyle{}, false
}

// StyleOrDefault returns the style with id, falling back to the default style.
func (c *Catalog) StyleOrDefault(id string) ImageStyle {
	if s, ok := c.Style(id); ok {
		return s
	}
	s, _ := c.Style(c.DefaultStyle)
	return s
}

func (c *Catalog) Voice(id string) (Voice, bool) {
	for _, v := range c.Voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}
