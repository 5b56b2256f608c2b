package user

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpsertProfile runs on every authenticated request so the local profile row
// mirrors the identity provider. Only identity-derived fields are written;
// full name is left untouched once set so a user's own edit wins.
func (s *Service) UpsertProfile(ctx context.Context, userID, email, name, avatarURL string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	profile := Profile{UserID: userID}
	if email != "" {
		profile.Email = &email
	}
	if name != "" {
		profile.FullName = &name
	}
	if avatarURL != "" {
		profile.AvatarURL = &avatarURL
	}

	return s.repo.UpsertProfile(ctx, &profile)
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*Profile, error) {
	fields := map[string]interface{}{}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, fmt.Errorf("full name must not be blank")
		}
		fields["full_name"] = name
	}
	if input.Bio != nil {
		bio := strings.TrimSpace(*input.Bio)
		fields["bio"] = bio
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("nothing to update")
	}

	if err := s.repo.UpdateProfile(ctx, input.UserID, fields); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, input.UserID)
}

func (s *Service) SetAvatar(ctx context.Context, userID, avatarURL string) error {
	if avatarURL == "" {
		return fmt.Errorf("avatar url is required")
	}
	return s.repo.UpdateProfile(ctx, userID, map[string]interface{}{"avatar_url": avatarURL})
}
