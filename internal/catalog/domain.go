// Package catalog holds the dish and menu domain model and its integrity rules.
package catalog

import (
	"time"

	"github.com/mensahub/mensahub/internal/shared"
)

// MealType is the closed set of meals a menu can be published for. The
// string values are persisted and round-tripped through forms.
type MealType string

const (
	MealLunch  MealType = "Lunch"
	MealDinner MealType = "Dinner"
)

// AllMealTypes lists the meal types in serving order.
func AllMealTypes() []MealType {
	return []MealType{MealLunch, MealDinner}
}

// ParseMealType maps a form value onto the enumeration.
func ParseMealType(value string) (MealType, error) {
	switch MealType(value) {
	case MealLunch:
		return MealLunch, nil
	case MealDinner:
		return MealDinner, nil
	}
	return "", shared.ErrValidation
}

// String returns the stable external representation.
func (m MealType) String() string {
	return string(m)
}

// Dish is a catalog item that menus are composed of.
type Dish struct {
	ID              int64
	Name            string
	Description     string
	NutritionalInfo string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Menu is a dated meal offering composed of at least one dish.
type Menu struct {
	ID        int64
	Date      time.Time
	MealType  MealType
	Dishes    []Dish
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MenuInput carries the fields for creating or replacing a menu.
type MenuInput struct {
	Date     time.Time
	MealType MealType
	DishIDs  []int64
}
