package recipe

import "context"

// ListQuery is the browse query: everything public, plus everything the
// viewer owns or collaborates on with an accepted invite, deduplicated.
type ListQuery struct {
	ViewerID   string
	Search     string
	Tag        string
	Difficulty Difficulty
	Limit      int
	Offset     int
}

type Repository interface {
	// Transaction runs fn against a repository bound to one transaction.
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateRecipe(ctx context.Context, r *Recipe) error
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	UpdateRecipe(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteRecipe(ctx context.Context, id string) error
	ListRecipes(ctx context.Context, q ListQuery) ([]Recipe, error)
	ListByOwner(ctx context.Context, ownerID string, drafts *bool) ([]Recipe, error)
	GetStats(ctx context.Context, ownerID string) (*Stats, error)

	InsertIngredients(ctx context.Context, rows []Ingredient) error
	ListIngredients(ctx context.Context, recipeID string) ([]Ingredient, error)
	DeleteIngredients(ctx context.Context, recipeID string) error

	InsertSteps(ctx context.Context, rows []Step) error
	ListSteps(ctx context.Context, recipeID string) ([]Step, error)
	DeleteSteps(ctx context.Context, recipeID string) error
}
