package collab

import "context"

type Repository interface {
	GetRecipeInfo(ctx context.Context, recipeID string) (*RecipeInfo, error)

	GetCollaborator(ctx context.Context, id string) (*Collaborator, error)
	// GetCollaboratorForUser matches a row by linked user id or, failing
	// that, by invited email (case-insensitive). Either argument may be
	// empty. Returns ErrCollaboratorNotFound when no row matches.
	GetCollaboratorForUser(ctx context.Context, recipeID, userID, email string) (*Collaborator, error)
	ListForRecipe(ctx context.Context, recipeID string) ([]Collaborator, error)
	ListCollaborationsForUser(ctx context.Context, userID, email string) ([]Collaboration, error)

	CreateCollaborator(ctx context.Context, c *Collaborator) error
	UpdateCollaborator(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteCollaborator(ctx context.Context, id string) error

	GetProfileRef(ctx context.Context, userID string) (ProfileRef, error)
	// FindProfileByEmail matches case-insensitively and returns
	// ErrProfileNotFound when no profile carries the address.
	FindProfileByEmail(ctx context.Context, email string) (ProfileRef, error)
}
