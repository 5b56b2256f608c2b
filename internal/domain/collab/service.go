package collab

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"recipe-share-go/internal/cache"
)

type Service struct {
	repo  Repository
	cache cache.Store
}

func NewService(repo Repository, store cache.Store) *Service {
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{repo: repo, cache: store}
}

// Resolve computes the caller's effective access on a recipe. An anonymous
// caller (empty userID) resolves against the recipe alone.
func (s *Service) Resolve(ctx context.Context, recipeID, userID, email string) (Access, *RecipeInfo, error) {
	info, err := s.repo.GetRecipeInfo(ctx, recipeID)
	if err != nil {
		return Access{}, nil, err
	}

	if userID == "" && email == "" {
		return ResolveAccess(info.OwnerID, "", nil), info, nil
	}

	c, err := s.repo.GetCollaboratorForUser(ctx, recipeID, userID, email)
	if err != nil {
		if errors.Is(err, ErrCollaboratorNotFound) {
			return ResolveAccess(info.OwnerID, userID, nil), info, nil
		}
		return Access{}, nil, err
	}
	return ResolveAccess(info.OwnerID, userID, c), info, nil
}

type InviteInput struct {
	RecipeID string
	ActorID  string
	Email    string
	Role     Role
}

// Invite creates a pending invite on behalf of the recipe owner. A matching
// declined row does not block a fresh invite; it is replaced. Matching rows
// in any other status reject the invite as a duplicate.
func (s *Service) Invite(ctx context.Context, input InviteInput) (*Collaborator, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	info, err := s.repo.GetRecipeInfo(ctx, input.RecipeID)
	if err != nil {
		return nil, err
	}
	if info.OwnerID != input.ActorID {
		return nil, ErrNotOwner
	}

	invitee, err := s.repo.FindProfileByEmail(ctx, email)
	switch {
	case err == nil:
		if invitee.UserID == info.OwnerID {
			return nil, ErrCannotInviteOwner
		}
	case errors.Is(err, ErrProfileNotFound):
		invitee = ProfileRef{}
	default:
		return nil, err
	}

	existing, err := s.repo.ListForRecipe(ctx, input.RecipeID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		c := &existing[i]
		if !s.matchesInvitee(ctx, c, email, invitee) {
			continue
		}
		if c.Status != StatusDeclined {
			return nil, ErrAlreadyInvited
		}
		if err := s.repo.DeleteCollaborator(ctx, c.ID); err != nil {
			return nil, err
		}
	}

	c := &Collaborator{
		ID:           uuid.NewString(),
		RecipeID:     input.RecipeID,
		InvitedEmail: &email,
		Role:         input.Role,
		Status:       StatusPending,
		InvitedBy:    input.ActorID,
		InvitedAt:    time.Now().UTC(),
	}
	if invitee.Found {
		c.UserID = &invitee.UserID
	}
	if err := s.repo.CreateCollaborator(ctx, c); err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, mutationKeys(input.RecipeID, input.ActorID, invitee.UserID)...)
	return c, nil
}

func (s *Service) matchesInvitee(ctx context.Context, c *Collaborator, email string, invitee ProfileRef) bool {
	if c.InvitedEmail != nil && strings.EqualFold(*c.InvitedEmail, email) {
		return true
	}
	if c.UserID == nil {
		return false
	}
	if invitee.Found && *c.UserID == invitee.UserID {
		return true
	}
	// Rows linked to a profile whose address later changed still count as
	// the same person when that profile now carries the invited email.
	ref, err := s.repo.GetProfileRef(ctx, *c.UserID)
	if err != nil || !ref.Found || ref.Email == nil {
		return false
	}
	return strings.EqualFold(*ref.Email, email)
}

// Respond accepts or declines a pending invite. An unlinked row is claimed
// when the actor's email matches the invited address.
func (s *Service) Respond(ctx context.Context, collaboratorID, actorID, actorEmail string, accept bool) (*Collaborator, error) {
	c, err := s.repo.GetCollaborator(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}

	claim := false
	switch {
	case c.UserID != nil && *c.UserID == actorID:
	case c.UserID == nil && c.InvitedEmail != nil && strings.EqualFold(*c.InvitedEmail, actorEmail):
		claim = true
	default:
		return nil, ErrNotInvitee
	}

	if c.Status != StatusPending {
		return nil, ErrInviteResolved
	}

	status := StatusDeclined
	if accept {
		status = StatusAccepted
	}
	fields := map[string]interface{}{"status": status}
	if claim {
		fields["user_id"] = actorID
	}
	if err := s.repo.UpdateCollaborator(ctx, c.ID, fields); err != nil {
		return nil, err
	}
	c.Status = status
	if claim {
		c.UserID = &actorID
	}

	s.cache.Delete(ctx, mutationKeys(c.RecipeID, actorID, c.InvitedBy)...)
	return c, nil
}

// ChangeRole switches a collaborator between editor and viewer. Owner only;
// the row's status is untouched, so an accepted viewer promoted to editor
// does not re-accept.
func (s *Service) ChangeRole(ctx context.Context, collaboratorID, actorID string, role Role) (*Collaborator, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	c, err := s.repo.GetCollaborator(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}
	info, err := s.repo.GetRecipeInfo(ctx, c.RecipeID)
	if err != nil {
		return nil, err
	}
	if info.OwnerID != actorID {
		return nil, ErrNotOwner
	}

	if err := s.repo.UpdateCollaborator(ctx, c.ID, map[string]interface{}{"role": role}); err != nil {
		return nil, err
	}
	c.Role = role

	s.cache.Delete(ctx, mutationKeys(c.RecipeID, actorID, deref(c.UserID))...)
	return c, nil
}

// Remove deletes a collaborator row. Owner only, regardless of status.
func (s *Service) Remove(ctx context.Context, collaboratorID, actorID string) error {
	c, err := s.repo.GetCollaborator(ctx, collaboratorID)
	if err != nil {
		return err
	}
	info, err := s.repo.GetRecipeInfo(ctx, c.RecipeID)
	if err != nil {
		return err
	}
	if info.OwnerID != actorID {
		return ErrNotOwner
	}

	if err := s.repo.DeleteCollaborator(ctx, c.ID); err != nil {
		return err
	}

	s.cache.Delete(ctx, mutationKeys(c.RecipeID, actorID, deref(c.UserID))...)
	return nil
}

// ListForRecipe returns the recipe's collaborators with their profiles
// attached as tagged lookups. Owner and accepted collaborators may list.
func (s *Service) ListForRecipe(ctx context.Context, recipeID, actorID, actorEmail string) ([]CollaboratorView, error) {
	access, _, err := s.Resolve(ctx, recipeID, actorID, actorEmail)
	if err != nil {
		return nil, err
	}
	if access.Permission == PermissionNone && access.Status != StatusPending {
		return nil, ErrNoAccess
	}

	rows, err := s.repo.ListForRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	views := make([]CollaboratorView, 0, len(rows))
	for _, c := range rows {
		view := CollaboratorView{Collaborator: c}
		if c.UserID != nil {
			ref, err := s.repo.GetProfileRef(ctx, *c.UserID)
			if err != nil {
				return nil, err
			}
			view.Profile = ref
		}
		views = append(views, view)
	}
	return views, nil
}

// ListForUser returns the actor's collaborations joined to recipe and owner,
// accepted rows first, newest invite first within a status.
func (s *Service) ListForUser(ctx context.Context, userID, email string) ([]Collaboration, error) {
	rows, err := s.repo.ListCollaborationsForUser(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if (rows[i].Status == StatusAccepted) != (rows[j].Status == StatusAccepted) {
			return rows[i].Status == StatusAccepted
		}
		return rows[i].InvitedAt.After(rows[j].InvitedAt)
	})
	return rows, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
