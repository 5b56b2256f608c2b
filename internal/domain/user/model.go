package user

import "time"

type Profile struct {
	UserID    string    `gorm:"type:uuid;primaryKey"`
	Email     *string   `gorm:"type:text"`
	FullName  *string   `gorm:"type:text"`
	Bio       *string   `gorm:"type:text"`
	AvatarURL *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type UpdateProfileInput struct {
	UserID   string
	FullName *string
	Bio      *string
}
