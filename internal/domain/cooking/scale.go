package cooking

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"recipe-share-go/internal/domain/recipe"
)

var ErrInvalidServings = errors.New("target servings must be at least 1")

// Scale converts a quantity written for canonical servings to the target.
// The stored quantity is never mutated; scaling is display-time arithmetic.
func Scale(quantity float64, canonical, target int) float64 {
	if canonical < 1 {
		canonical = 1
	}
	return quantity * float64(target) / float64(canonical)
}

// FormatQuantity renders a scaled quantity for display. Precision steps down
// as the number grows: two decimals under 1, one decimal under 10, whole
// numbers from 10 up. Trailing zeros are stripped, so 2.50 reads "2.5" and
// 3.00 reads "3".
func FormatQuantity(v float64) string {
	switch {
	case v < 1:
		return stripZeros(strconv.FormatFloat(v, 'f', 2, 64))
	case v < 10:
		return stripZeros(strconv.FormatFloat(v, 'f', 1, 64))
	default:
		return strconv.Itoa(int(math.Round(v)))
	}
}

func stripZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

type ScaledIngredient struct {
	recipe.Ingredient
	ScaledQuantity float64 `json:"scaled_quantity"`
	Display        string  `json:"display"`
}

// ScaleIngredients applies Scale and FormatQuantity across a recipe's
// ingredient list. Units pass through untouched.
func ScaleIngredients(rows []recipe.Ingredient, canonical, target int) ([]ScaledIngredient, error) {
	if target < 1 {
		return nil, ErrInvalidServings
	}

	out := make([]ScaledIngredient, 0, len(rows))
	for _, row := range rows {
		scaled := Scale(row.Quantity, canonical, target)
		out = append(out, ScaledIngredient{
			Ingredient:     row,
			ScaledQuantity: scaled,
			Display:        FormatQuantity(scaled),
		})
	}
	return out, nil
}
