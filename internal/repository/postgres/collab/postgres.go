package collab

import (
	"context"
	"errors"

	"gorm.io/gorm"

	collabdomain "recipe-share-go/internal/domain/collab"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetRecipeInfo reads the slice of the recipes table collaborator decisions
// need, keeping this package independent of the recipe repository.
func (r *PostgresRepository) GetRecipeInfo(ctx context.Context, recipeID string) (*collabdomain.RecipeInfo, error) {
	var info collabdomain.RecipeInfo
	if err := r.db.WithContext(ctx).
		Table("recipes").
		Select("id, user_id AS owner_id, title, is_public").
		Where("id = ?", recipeID).
		Take(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, collabdomain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &info, nil
}

func (r *PostgresRepository) GetCollaborator(ctx context.Context, id string) (*collabdomain.Collaborator, error) {
	var c collabdomain.Collaborator
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, collabdomain.ErrCollaboratorNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) GetCollaboratorForUser(ctx context.Context, recipeID, userID, email string) (*collabdomain.Collaborator, error) {
	query := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID)
	switch {
	case userID != "" && email != "":
		query = query.Where("(user_id = ? OR LOWER(invited_email) = LOWER(?))", userID, email)
	case userID != "":
		query = query.Where("user_id = ?", userID)
	case email != "":
		query = query.Where("LOWER(invited_email) = LOWER(?)", email)
	default:
		return nil, collabdomain.ErrCollaboratorNotFound
	}

	var c collabdomain.Collaborator
	// Prefer the row already linked to the user over an email-only match.
	if err := query.
		Order("user_id IS NULL, invited_at DESC").
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, collabdomain.ErrCollaboratorNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) ListForRecipe(ctx context.Context, recipeID string) ([]collabdomain.Collaborator, error) {
	var rows []collabdomain.Collaborator
	if err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("invited_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) ListCollaborationsForUser(ctx context.Context, userID, email string) ([]collabdomain.Collaboration, error) {
	query := r.db.WithContext(ctx).Model(&collabdomain.Collaborator{})
	switch {
	case userID != "" && email != "":
		query = query.Where("user_id = ? OR LOWER(invited_email) = LOWER(?)", userID, email)
	case userID != "":
		query = query.Where("user_id = ?", userID)
	case email != "":
		query = query.Where("LOWER(invited_email) = LOWER(?)", email)
	default:
		return nil, nil
	}

	var rows []collabdomain.Collaborator
	if err := query.Order("invited_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]collabdomain.Collaboration, 0, len(rows))
	for _, c := range rows {
		info, err := r.GetRecipeInfo(ctx, c.RecipeID)
		if err != nil {
			if errors.Is(err, collabdomain.ErrRecipeNotFound) {
				continue
			}
			return nil, err
		}
		owner, err := r.GetProfileRef(ctx, info.OwnerID)
		if err != nil {
			return nil, err
		}
		out = append(out, collabdomain.Collaboration{
			Collaborator: c,
			Recipe:       *info,
			Owner:        owner,
		})
	}
	return out, nil
}

func (r *PostgresRepository) CreateCollaborator(ctx context.Context, c *collabdomain.Collaborator) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *PostgresRepository) UpdateCollaborator(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&collabdomain.Collaborator{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return collabdomain.ErrCollaboratorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteCollaborator(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&collabdomain.Collaborator{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return collabdomain.ErrCollaboratorNotFound
	}
	return nil
}

func (r *PostgresRepository) GetProfileRef(ctx context.Context, userID string) (collabdomain.ProfileRef, error) {
	var row struct {
		UserID    string
		Email     *string
		FullName  *string
		AvatarURL *string
	}
	err := r.db.WithContext(ctx).
		Table("profiles").
		Select("user_id, email, full_name, avatar_url").
		Where("user_id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return collabdomain.ProfileRef{}, nil
		}
		return collabdomain.ProfileRef{}, err
	}
	return collabdomain.ProfileRef{
		Found:     true,
		UserID:    row.UserID,
		Email:     row.Email,
		FullName:  row.FullName,
		AvatarURL: row.AvatarURL,
	}, nil
}

func (r *PostgresRepository) FindProfileByEmail(ctx context.Context, email string) (collabdomain.ProfileRef, error) {
	var row struct {
		UserID    string
		Email     *string
		FullName  *string
		AvatarURL *string
	}
	err := r.db.WithContext(ctx).
		Table("profiles").
		Select("user_id, email, full_name, avatar_url").
		Where("LOWER(email) = LOWER(?)", email).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return collabdomain.ProfileRef{}, collabdomain.ErrProfileNotFound
		}
		return collabdomain.ProfileRef{}, err
	}
	return collabdomain.ProfileRef{
		Found:     true,
		UserID:    row.UserID,
		Email:     row.Email,
		FullName:  row.FullName,
		AvatarURL: row.AvatarURL,
	}, nil
}
