package recipe

import "errors"

var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrTitleRequired      = errors.New("a recipe title is required")
	ErrInvalidDifficulty  = errors.New("difficulty must be easy, medium or hard")
	ErrOnlyOwnerCanDelete = errors.New("only the recipe owner can delete it")
)
