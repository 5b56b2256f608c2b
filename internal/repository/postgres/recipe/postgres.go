package recipe

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	recipedomain "recipe-share-go/internal/domain/recipe"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(recipedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateRecipe(ctx context.Context, rec *recipedomain.Recipe) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *PostgresRepository) GetRecipe(ctx context.Context, id string) (*recipedomain.Recipe, error) {
	var rec recipedomain.Recipe
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipedomain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresRepository) UpdateRecipe(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&recipedomain.Recipe{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipedomain.ErrRecipeNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteRecipe(ctx context.Context, id string) error {
	// Ingredient, step and collaborator rows go with the recipe via
	// ON DELETE CASCADE.
	result := r.db.WithContext(ctx).Delete(&recipedomain.Recipe{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipedomain.ErrRecipeNotFound
	}
	return nil
}

// ListRecipes is the browse query: public recipes plus, for a signed-in
// viewer, their own and the ones shared with them through an accepted
// invite.
func (r *PostgresRepository) ListRecipes(ctx context.Context, q recipedomain.ListQuery) ([]recipedomain.Recipe, error) {
	query := r.db.WithContext(ctx).Model(&recipedomain.Recipe{})

	if q.ViewerID != "" {
		query = query.Where(
			`is_public = TRUE
			 OR user_id = ?
			 OR id IN (
				SELECT recipe_id FROM recipe_collaborators
				WHERE user_id = ? AND status = 'accepted'
			 )`,
			q.ViewerID, q.ViewerID,
		)
	} else {
		query = query.Where("is_public = TRUE")
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	if q.Tag != "" {
		query = query.Where("? = ANY(tags)", q.Tag)
	}
	if q.Difficulty != "" {
		query = query.Where("difficulty = ?", q.Difficulty)
	}

	query = query.Order("created_at DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var recipes []recipedomain.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, drafts *bool) ([]recipedomain.Recipe, error) {
	query := r.db.WithContext(ctx).
		Model(&recipedomain.Recipe{}).
		Where("user_id = ?", ownerID)
	if drafts != nil {
		query = query.Where("is_public = ?", !*drafts)
	}

	var recipes []recipedomain.Recipe
	if err := query.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *PostgresRepository) GetStats(ctx context.Context, ownerID string) (*recipedomain.Stats, error) {
	var stats recipedomain.Stats
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                                  AS recipes,
		       COUNT(*) FILTER (WHERE is_public)         AS public,
		       COUNT(*) FILTER (WHERE NOT is_public)     AS drafts,
		       COALESCE(SUM(COALESCE(prep_time, 0)
		                  + COALESCE(cook_time, 0)), 0)  AS total_minutes
		FROM recipes
		WHERE user_id = ?`, ownerID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *PostgresRepository) InsertIngredients(ctx context.Context, rows []recipedomain.Ingredient) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *PostgresRepository) ListIngredients(ctx context.Context, recipeID string) ([]recipedomain.Ingredient, error) {
	var rows []recipedomain.Ingredient
	if err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("order_index ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) DeleteIngredients(ctx context.Context, recipeID string) error {
	return r.db.WithContext(ctx).
		Delete(&recipedomain.Ingredient{}, "recipe_id = ?", recipeID).Error
}

func (r *PostgresRepository) InsertSteps(ctx context.Context, rows []recipedomain.Step) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *PostgresRepository) ListSteps(ctx context.Context, recipeID string) ([]recipedomain.Step, error) {
	var rows []recipedomain.Step
	if err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("step_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) DeleteSteps(ctx context.Context, recipeID string) error {
	return r.db.WithContext(ctx).
		Delete(&recipedomain.Step{}, "recipe_id = ?", recipeID).Error
}
