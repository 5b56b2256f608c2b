package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	userdomain "recipe-share-go/internal/domain/user"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// UpsertProfile keeps the profile row in sync with the identity provider.
// Provider values never overwrite a name or avatar the user has set locally;
// the email always follows the provider.
func (r *PostgresRepository) UpsertProfile(ctx context.Context, profile *userdomain.Profile) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO profiles (user_id, email, full_name, avatar_url)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			email      = COALESCE(EXCLUDED.email, profiles.email),
			full_name  = COALESCE(profiles.full_name, EXCLUDED.full_name),
			avatar_url = COALESCE(profiles.avatar_url, EXCLUDED.avatar_url),
			updated_at = NOW()`,
		profile.UserID, profile.Email, profile.FullName, profile.AvatarURL,
	).Error
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*userdomain.Profile, error) {
	var profile userdomain.Profile
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&userdomain.Profile{}).
		Where("user_id = ?", userID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return userdomain.ErrProfileNotFound
	}
	return nil
}
