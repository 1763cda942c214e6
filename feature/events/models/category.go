package models

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category is the canonical category vocabulary. Remote categories are
// matched by this name.
type Category string

const (
	CategoryArt      Category = "Art"
	CategoryTour     Category = "Tour"
	CategoryComedy   Category = "Comedy"
	CategoryMusic    Category = "Music"
	CategoryTheater  Category = "Theater"
	CategoryDining   Category = "Dining"
	CategoryFitness  Category = "Fitness"
	CategoryFamily   Category = "Family"
	CategoryShopping Category = "Shopping"
	CategorySports   Category = "Sports"
	CategoryFestival Category = "Festival"
	CategoryOther    Category = "Other"
	CategoryLecture  Category = "Lecture"

	// CategoryUnmapped is returned for labels outside the table.
	CategoryUnmapped Category = ""
)

// sourceCategories maps source labels (NFC) to canonical categories.
var sourceCategories = map[string]Category{
	"Ausstellung/Kunst":     CategoryArt,
	"Führung/Besichtigung":  CategoryTour,
	"Comedy":                CategoryComedy,
	"Konzert/Musik":         CategoryMusic,
	"Theater":               CategoryTheater,
	"Genuss/Gourmet":        CategoryDining,
	"Gesundheit/Wellness":   CategoryFitness,
	"Kinder/Jugend":         CategoryFamily,
	"Markt/Flohmarkt":       CategoryShopping,
	"Sport":                 CategorySports,
	"Kabarett":              CategoryArt,
	"Musical":               CategoryTheater,
	"Weihnachtsmärkte":      CategoryFestival,
	"Stadt- und Volksfeste": CategoryFestival,
	"Sonstiges":             CategoryOther,
	"Vortrag/Lesung":        CategoryLecture,
}

// MapSourceCategory translates a source label into the canonical vocabulary.
func MapSourceCategory(label string) Category {
	if c, ok := sourceCategories[norm.NFC.String(strings.TrimSpace(label))]; ok {
		return c
	}
	return CategoryUnmapped
}
