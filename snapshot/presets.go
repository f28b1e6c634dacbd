package snapshot

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"airbnb-dashboard/models"
)

// Preset is a named, partial set of filter criteria. Nil fields take the
// dataset defaults; an explicit empty list selects nothing.
type Preset struct {
	Name            string        `yaml:"name" validate:"required"`
	Neighbourhoods  []string      `yaml:"neighbourhoods"`
	RoomTypes       []string      `yaml:"room_types"`
	Price           *models.Range `yaml:"price"`
	Availability    *models.Range `yaml:"availability"`
	ReviewsPerMonth *models.Range `yaml:"reviews_per_month"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets" validate:"required,min=1,dive"`
}

var unsafeName = regexp.MustCompile(`[^a-z0-9_-]+`)

// LoadPresets reads and validates a presets YAML file.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read presets: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets decodes presets from YAML.
func ParsePresets(data []byte) ([]Preset, error) {
	var f presetFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("snapshot: decode presets: %w", err)
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("snapshot: invalid presets: %w", err)
	}
	return f.Presets, nil
}

// Criteria overlays the preset on defaults.
func (p Preset) Criteria(defaults models.FilterCriteria) models.FilterCriteria {
	c := defaults.Clone()
	if p.Neighbourhoods != nil {
		c.Neighbourhoods = append([]string{}, p.Neighbourhoods...)
	}
	if p.RoomTypes != nil {
		c.RoomTypes = append([]string{}, p.RoomTypes...)
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Availability != nil {
		c.Availability = *p.Availability
	}
	if p.ReviewsPerMonth != nil {
		c.ReviewsPerMonth = *p.ReviewsPerMonth
	}
	return c
}

// FileName turns the preset name into a file-system friendly stem.
func (p Preset) FileName() string {
	name := unsafeName.ReplaceAllString(strings.ToLower(strings.TrimSpace(p.Name)), "-")
	name = strings.Trim(name, "-")
	if name == "" {
		return "preset"
	}
	return name
}
