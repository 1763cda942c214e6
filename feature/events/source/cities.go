package source

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"
)

// City is one enumeration unit of the harzinfo search.
type City struct {
	ID        int    `yaml:"id" json:"id"`
	ShortName string `yaml:"short_name" json:"short_name"`
	Title     string `yaml:"title" json:"title"`
}

// Name is the display name of the city, used as organizer name.
func (c City) Name() string {
	if c.ShortName != "" {
		return c.ShortName
	}
	return c.Title
}

// LoadCities reads a YAML mapping of key to city, ordered by key.
func LoadCities(path string) ([]City, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cities file: %w", err)
	}
	return ParseCities(data)
}

// ParseCities parses the cities YAML document.
func ParseCities(data []byte) ([]City, error) {
	var byKey map[string]City
	if err := yaml.Unmarshal(data, &byKey); err != nil {
		return nil, fmt.Errorf("failed to parse cities: %w", err)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cities := make([]City, 0, len(keys))
	for _, k := range keys {
		city := byKey[k]
		if city.ID == 0 || city.Name() == "" {
			return nil, fmt.Errorf("city %q needs an id and a name", k)
		}
		cities = append(cities, city)
	}
	return cities, nil
}
