package collab

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"recipe-share-go/internal/cache"
)

type fakeRepo struct {
	recipes       map[string]*RecipeInfo
	collaborators map[string]*Collaborator
	profiles      map[string]ProfileRef
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		recipes:       map[string]*RecipeInfo{},
		collaborators: map[string]*Collaborator{},
		profiles:      map[string]ProfileRef{},
	}
}

func (f *fakeRepo) addRecipe(id, ownerID string) {
	f.recipes[id] = &RecipeInfo{ID: id, OwnerID: ownerID, Title: "Recipe " + id, IsPublic: true}
}

func (f *fakeRepo) addProfile(userID, email string) {
	f.profiles[userID] = ProfileRef{Found: true, UserID: userID, Email: &email}
}

func (f *fakeRepo) GetRecipeInfo(ctx context.Context, recipeID string) (*RecipeInfo, error) {
	info, ok := f.recipes[recipeID]
	if !ok {
		return nil, ErrRecipeNotFound
	}
	return info, nil
}

func (f *fakeRepo) GetCollaborator(ctx context.Context, id string) (*Collaborator, error) {
	c, ok := f.collaborators[id]
	if !ok {
		return nil, ErrCollaboratorNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeRepo) GetCollaboratorForUser(ctx context.Context, recipeID, userID, email string) (*Collaborator, error) {
	for _, c := range f.collaborators {
		if c.RecipeID != recipeID {
			continue
		}
		if userID != "" && c.UserID != nil && *c.UserID == userID {
			clone := *c
			return &clone, nil
		}
		if email != "" && c.InvitedEmail != nil && strings.EqualFold(*c.InvitedEmail, email) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, ErrCollaboratorNotFound
}

func (f *fakeRepo) ListForRecipe(ctx context.Context, recipeID string) ([]Collaborator, error) {
	var out []Collaborator
	for _, c := range f.collaborators {
		if c.RecipeID == recipeID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListCollaborationsForUser(ctx context.Context, userID, email string) ([]Collaboration, error) {
	var out []Collaboration
	for _, c := range f.collaborators {
		matched := c.UserID != nil && *c.UserID == userID
		if !matched && email != "" && c.InvitedEmail != nil {
			matched = strings.EqualFold(*c.InvitedEmail, email)
		}
		if !matched {
			continue
		}
		row := Collaboration{Collaborator: *c}
		if info, ok := f.recipes[c.RecipeID]; ok {
			row.Recipe = *info
			row.Owner = f.profiles[info.OwnerID]
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeRepo) CreateCollaborator(ctx context.Context, c *Collaborator) error {
	clone := *c
	f.collaborators[c.ID] = &clone
	return nil
}

func (f *fakeRepo) UpdateCollaborator(ctx context.Context, id string, fields map[string]interface{}) error {
	c, ok := f.collaborators[id]
	if !ok {
		return ErrCollaboratorNotFound
	}
	if v, ok := fields["status"]; ok {
		c.Status = v.(Status)
	}
	if v, ok := fields["role"]; ok {
		c.Role = v.(Role)
	}
	if v, ok := fields["user_id"]; ok {
		uid := v.(string)
		c.UserID = &uid
	}
	return nil
}

func (f *fakeRepo) DeleteCollaborator(ctx context.Context, id string) error {
	if _, ok := f.collaborators[id]; !ok {
		return ErrCollaboratorNotFound
	}
	delete(f.collaborators, id)
	return nil
}

func (f *fakeRepo) GetProfileRef(ctx context.Context, userID string) (ProfileRef, error) {
	ref, ok := f.profiles[userID]
	if !ok {
		return ProfileRef{}, nil
	}
	return ref, nil
}

func (f *fakeRepo) FindProfileByEmail(ctx context.Context, email string) (ProfileRef, error) {
	for _, ref := range f.profiles {
		if ref.Email != nil && strings.EqualFold(*ref.Email, email) {
			return ref, nil
		}
	}
	return ProfileRef{}, ErrProfileNotFound
}

type spyCache struct {
	cache.Noop
	deleted []string
}

func (s *spyCache) Delete(ctx context.Context, keys ...string) {
	s.deleted = append(s.deleted, keys...)
}

func TestInviteOwnerOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	svc := NewService(repo, nil)

	_, err := svc.Invite(context.Background(), InviteInput{RecipeID: "r1", ActorID: "stranger", Email: "x@example.com", Role: RoleEditor})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
}

func TestInviteCreatesPendingAndLinksProfile(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	repo.addProfile("u2", "bob@example.com")
	spy := &spyCache{}
	svc := NewService(repo, spy)

	c, err := svc.Invite(context.Background(), InviteInput{RecipeID: "r1", ActorID: "owner-1", Email: "Bob@Example.com", Role: RoleViewer})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if c.Status != StatusPending {
		t.Errorf("status = %s, want pending", c.Status)
	}
	if c.UserID == nil || *c.UserID != "u2" {
		t.Errorf("user id = %v, want linked to u2", c.UserID)
	}
	if len(spy.deleted) == 0 {
		t.Error("invite did not invalidate any cache keys")
	}
	want := cache.KeyUserCollaborations("u2")
	found := false
	for _, k := range spy.deleted {
		if k == want {
			found = true
		}
	}
	if !found {
		t.Errorf("invalidation missing %s; got %v", want, spy.deleted)
	}
}

func TestInviteDuplicateRejected(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusAccepted} {
		repo := newFakeRepo()
		repo.addRecipe("r1", "owner-1")
		email := "bob@example.com"
		repo.collaborators["c1"] = &Collaborator{ID: "c1", RecipeID: "r1", InvitedEmail: &email, Role: RoleViewer, Status: status}
		svc := NewService(repo, nil)

		_, err := svc.Invite(context.Background(), InviteInput{RecipeID: "r1", ActorID: "owner-1", Email: "BOB@example.com", Role: RoleEditor})
		if !errors.Is(err, ErrAlreadyInvited) {
			t.Errorf("%s duplicate: err = %v, want ErrAlreadyInvited", status, err)
		}
	}
}

func TestInviteReplacesDeclined(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	email := "bob@example.com"
	repo.collaborators["c1"] = &Collaborator{ID: "c1", RecipeID: "r1", InvitedEmail: &email, Role: RoleViewer, Status: StatusDeclined}
	svc := NewService(repo, nil)

	c, err := svc.Invite(context.Background(), InviteInput{RecipeID: "r1", ActorID: "owner-1", Email: "bob@example.com", Role: RoleEditor})
	if err != nil {
		t.Fatalf("invite after decline: %v", err)
	}
	if c.Status != StatusPending || c.Role != RoleEditor {
		t.Errorf("replacement row = %s/%s, want pending editor", c.Status, c.Role)
	}
	if _, ok := repo.collaborators["c1"]; ok {
		t.Error("declined row was not replaced")
	}
	if len(repo.collaborators) != 1 {
		t.Errorf("row count = %d, want 1", len(repo.collaborators))
	}
}

func TestInviteOwnerSelfRejected(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	repo.addProfile("owner-1", "owner@example.com")
	svc := NewService(repo, nil)

	_, err := svc.Invite(context.Background(), InviteInput{RecipeID: "r1", ActorID: "owner-1", Email: "owner@example.com", Role: RoleEditor})
	if !errors.Is(err, ErrCannotInviteOwner) {
		t.Fatalf("err = %v, want ErrCannotInviteOwner", err)
	}
}

func TestRespondClaimsUnlinkedInvite(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	email := "bob@example.com"
	repo.collaborators["c1"] = &Collaborator{ID: "c1", RecipeID: "r1", InvitedEmail: &email, Role: RoleEditor, Status: StatusPending, InvitedBy: "owner-1"}
	svc := NewService(repo, nil)

	c, err := svc.Respond(context.Background(), "c1", "u2", "Bob@example.com", true)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if c.Status != StatusAccepted {
		t.Errorf("status = %s, want accepted", c.Status)
	}
	if c.UserID == nil || *c.UserID != "u2" {
		t.Errorf("user id = %v, want claimed by u2", c.UserID)
	}
}

func TestRespondOnlyInvitee(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	uid := "u2"
	repo.collaborators["c1"] = &Collaborator{ID: "c1", RecipeID: "r1", UserID: &uid, Role: RoleEditor, Status: StatusPending}
	svc := NewService(repo, nil)

	_, err := svc.Respond(context.Background(), "c1", "u3", "someone@else.com", true)
	if !errors.Is(err, ErrNotInvitee) {
		t.Fatalf("err = %v, want ErrNotInvitee", err)
	}
}

func TestRespondTwiceRejected(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	uid := "u2"
	repo.collaborators["c1"] = &Collaborator{ID: "c1", RecipeID: "r1", UserID: &uid, Role: RoleEditor, Status: StatusAccepted}
	svc := NewService(repo, nil)

	_, err := svc.Respond(context.Background(), "c1", "u2", "", false)
	if !errors.Is(err, ErrInviteResolved) {
		t.Fatalf("err = %v, want ErrInviteResolved", err)
	}
}

// Viewer invited, accepts, is denied edit, gets promoted by the owner and
// can edit without responding again.
func TestPromotionWithoutReaccept(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	repo.addProfile("u2", "bob@example.com")
	svc := NewService(repo, nil)

	invited, err := svc.Invite(ctx, InviteInput{RecipeID: "r1", ActorID: "owner-1", Email: "bob@example.com", Role: RoleViewer})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := svc.Respond(ctx, invited.ID, "u2", "bob@example.com", true); err != nil {
		t.Fatalf("respond: %v", err)
	}

	access, _, err := svc.Resolve(ctx, "r1", "u2", "bob@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !errors.Is(access.AuthorizeEdit(), ErrViewerOnly) {
		t.Fatalf("accepted viewer AuthorizeEdit = %v, want ErrViewerOnly", access.AuthorizeEdit())
	}

	if _, err := svc.ChangeRole(ctx, invited.ID, "owner-1", RoleEditor); err != nil {
		t.Fatalf("change role: %v", err)
	}

	access, _, err = svc.Resolve(ctx, "r1", "u2", "bob@example.com")
	if err != nil {
		t.Fatalf("resolve after promotion: %v", err)
	}
	if access.Permission != PermissionEditor {
		t.Errorf("permission = %s, want editor", access.Permission)
	}
	if err := access.AuthorizeEdit(); err != nil {
		t.Errorf("promoted editor AuthorizeEdit = %v, want nil", err)
	}
}

func TestChangeRoleOwnerOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	uid := "u2"
	repo.collaborators["c1"] = &Collaborator{ID: "c1", RecipeID: "r1", UserID: &uid, Role: RoleViewer, Status: StatusAccepted}
	svc := NewService(repo, nil)

	_, err := svc.ChangeRole(context.Background(), "c1", "u2", RoleEditor)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
}

func TestRemoveOwnerOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	uid := "u2"
	repo.collaborators["c1"] = &Collaborator{ID: "c1", RecipeID: "r1", UserID: &uid, Role: RoleViewer, Status: StatusAccepted}
	svc := NewService(repo, nil)

	if err := svc.Remove(context.Background(), "c1", "u2"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
	if err := svc.Remove(context.Background(), "c1", "owner-1"); err != nil {
		t.Fatalf("owner remove: %v", err)
	}
	if len(repo.collaborators) != 0 {
		t.Error("row survived removal")
	}
}

func TestListForRecipeAttachesProfiles(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	repo.addProfile("u2", "bob@example.com")
	uid := "u2"
	email := "carol@example.com"
	repo.collaborators["c1"] = &Collaborator{ID: "c1", RecipeID: "r1", UserID: &uid, Role: RoleEditor, Status: StatusAccepted}
	repo.collaborators["c2"] = &Collaborator{ID: "c2", RecipeID: "r1", InvitedEmail: &email, Role: RoleViewer, Status: StatusPending}
	svc := NewService(repo, nil)

	views, err := svc.ListForRecipe(context.Background(), "r1", "owner-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len = %d, want 2", len(views))
	}
	for _, v := range views {
		switch v.ID {
		case "c1":
			if !v.Profile.Found {
				t.Error("linked collaborator missing profile")
			}
		case "c2":
			if v.Profile.Found {
				t.Error("email-only invite should have no profile")
			}
		}
	}
}

func TestListForRecipeDeniedToStrangers(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	svc := NewService(repo, nil)

	_, err := svc.ListForRecipe(context.Background(), "r1", "stranger", "s@example.com")
	if !errors.Is(err, ErrNoAccess) {
		t.Fatalf("err = %v, want ErrNoAccess", err)
	}
}

func TestListForUserAcceptedFirst(t *testing.T) {
	repo := newFakeRepo()
	repo.addRecipe("r1", "owner-1")
	repo.addRecipe("r2", "owner-1")
	uid := "u2"
	now := time.Now()
	repo.collaborators["c1"] = &Collaborator{ID: "c1", RecipeID: "r1", UserID: &uid, Role: RoleViewer, Status: StatusPending, InvitedAt: now}
	repo.collaborators["c2"] = &Collaborator{ID: "c2", RecipeID: "r2", UserID: &uid, Role: RoleEditor, Status: StatusAccepted, InvitedAt: now.Add(-time.Hour)}
	svc := NewService(repo, nil)

	rows, err := svc.ListForUser(context.Background(), "u2", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Status != StatusAccepted {
		t.Errorf("first row status = %s, want accepted", rows[0].Status)
	}
	if rows[0].Recipe.ID != "r2" {
		t.Errorf("first row recipe = %s, want r2", rows[0].Recipe.ID)
	}
}
