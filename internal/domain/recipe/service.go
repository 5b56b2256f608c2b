package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"recipe-share-go/internal/cache"
	"recipe-share-go/internal/domain/collab"
)

// CollaboratorSource is the slice of the collaborator repository this package
// needs to resolve access. Satisfied by collab.Repository.
type CollaboratorSource interface {
	GetCollaboratorForUser(ctx context.Context, recipeID, userID, email string) (*collab.Collaborator, error)
}

type Service struct {
	repo    Repository
	collabs CollaboratorSource
	cache   cache.Store
	ttl     time.Duration
}

func NewService(repo Repository, collabs CollaboratorSource, store cache.Store, ttl time.Duration) *Service {
	if store == nil {
		store = cache.Noop{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{repo: repo, collabs: collabs, cache: store, ttl: ttl}
}

type IngredientInput struct {
	Name     string
	Quantity *float64
	Unit     string
	Notes    *string
}

type StepInput struct {
	Instruction  string
	TimerMinutes *int
	ImageURL     *string
	VideoURL     *string
}

type CreateInput struct {
	Title            string
	Description      *string
	Servings         int
	PrepTime         *int
	CookTime         *int
	Difficulty       *Difficulty
	Tags             []string
	FeaturedImageURL *string
	Public           bool
	Draft            bool
	Ingredients      []IngredientInput
	Steps            []StepInput
}

type UpdateInput struct {
	RecipeID string
	CreateInput
}

func validateInput(input *CreateInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return ErrTitleRequired
	}
	if input.Difficulty != nil && !input.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}
	if input.Servings < 1 {
		input.Servings = 1
	}
	return nil
}

// Create validates, filters out blank ingredient and step rows, re-indexes
// the survivors and writes the whole bundle in one transaction. A recipe
// saved as draft is never public, whatever the public flag says.
func (s *Service) Create(ctx context.Context, actorID string, input CreateInput) (*Detail, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	rec := &Recipe{
		ID:               uuid.NewString(),
		UserID:           actorID,
		Title:            input.Title,
		Description:      input.Description,
		Servings:         input.Servings,
		PrepTime:         input.PrepTime,
		CookTime:         input.CookTime,
		Difficulty:       input.Difficulty,
		Tags:             pq.StringArray(input.Tags),
		FeaturedImageURL: input.FeaturedImageURL,
		IsPublic:         input.Public && !input.Draft,
	}
	ingredients := normalizeIngredients(rec.ID, input.Ingredients)
	steps := normalizeSteps(rec.ID, input.Steps)

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateRecipe(ctx, rec); err != nil {
			return err
		}
		if err := tx.InsertIngredients(ctx, ingredients); err != nil {
			return err
		}
		return tx.InsertSteps(ctx, steps)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, mutationKeys(rec.ID, actorID)...)
	return &Detail{
		Recipe:      *rec,
		Ingredients: ingredients,
		Steps:       steps,
		Access:      collab.Access{Permission: collab.PermissionOwner},
	}, nil
}

// Get returns the recipe bundle with the viewer's access attached. Drafts
// hidden from the viewer read as not found rather than forbidden, so their
// existence does not leak.
func (s *Service) Get(ctx context.Context, id, viewerID, viewerEmail string) (*Detail, error) {
	rec, err := s.loadRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	access, err := s.resolveAccess(ctx, rec, viewerID, viewerEmail)
	if err != nil {
		return nil, err
	}
	if !access.CanView(rec.IsPublic) {
		return nil, ErrRecipeNotFound
	}

	ingredients, err := s.loadIngredients(ctx, id)
	if err != nil {
		return nil, err
	}
	steps, err := s.loadSteps(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Detail{Recipe: *rec, Ingredients: ingredients, Steps: steps, Access: access}, nil
}

// Update rewrites the recipe and wholesale replaces its ingredient and step
// rows inside one transaction, so a failed write never leaves a recipe with
// half of the old list and half of the new one.
func (s *Service) Update(ctx context.Context, actorID, actorEmail string, input UpdateInput) (*Detail, error) {
	if err := validateInput(&input.CreateInput); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetRecipe(ctx, input.RecipeID)
	if err != nil {
		return nil, err
	}
	access, err := s.resolveAccess(ctx, rec, actorID, actorEmail)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeEdit(); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"title":              input.Title,
		"description":        input.Description,
		"servings":           input.Servings,
		"prep_time":          input.PrepTime,
		"cook_time":          input.CookTime,
		"difficulty":         input.Difficulty,
		"tags":               pq.StringArray(input.Tags),
		"featured_image_url": input.FeaturedImageURL,
		"is_public":          input.Public && !input.Draft,
	}
	ingredients := normalizeIngredients(rec.ID, input.Ingredients)
	steps := normalizeSteps(rec.ID, input.Steps)

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.UpdateRecipe(ctx, rec.ID, fields); err != nil {
			return err
		}
		if err := tx.DeleteIngredients(ctx, rec.ID); err != nil {
			return err
		}
		if err := tx.InsertIngredients(ctx, ingredients); err != nil {
			return err
		}
		if err := tx.DeleteSteps(ctx, rec.ID); err != nil {
			return err
		}
		return tx.InsertSteps(ctx, steps)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, mutationKeys(rec.ID, rec.UserID)...)

	updated, err := s.repo.GetRecipe(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Recipe: *updated, Ingredients: ingredients, Steps: steps, Access: access}, nil
}

func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	rec, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserID != actorID {
		return ErrOnlyOwnerCanDelete
	}
	if err := s.repo.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(ctx, mutationKeys(id, rec.UserID)...)
	return nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *Service) List(ctx context.Context, q ListQuery) ([]Recipe, error) {
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Difficulty != "" && !q.Difficulty.Valid() {
		return nil, ErrInvalidDifficulty
	}
	return s.repo.ListRecipes(ctx, q)
}

// ListByOwner serves the dashboard. drafts filters to drafts-only (true) or
// published-only (false); nil returns everything the owner has.
func (s *Service) ListByOwner(ctx context.Context, ownerID string, drafts *bool) ([]Recipe, error) {
	return s.repo.ListByOwner(ctx, ownerID, drafts)
}

func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	key := cache.KeyUserStats(userID)
	if b, ok := s.cache.Get(ctx, key); ok {
		var stats Stats
		if err := json.Unmarshal(b, &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(stats); err == nil {
		s.cache.Set(ctx, key, b, s.ttl)
	}
	return stats, nil
}

// Ingredients returns the recipe's ingredient rows with the same visibility
// gating as Get. Used by the serving scaler endpoint.
func (s *Service) Ingredients(ctx context.Context, id, viewerID, viewerEmail string) (*Recipe, []Ingredient, error) {
	rec, err := s.loadRecipe(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	access, err := s.resolveAccess(ctx, rec, viewerID, viewerEmail)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanView(rec.IsPublic) {
		return nil, nil, ErrRecipeNotFound
	}
	rows, err := s.loadIngredients(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return rec, rows, nil
}

func (s *Service) resolveAccess(ctx context.Context, rec *Recipe, userID, email string) (collab.Access, error) {
	if userID == "" && email == "" {
		return collab.ResolveAccess(rec.UserID, "", nil), nil
	}
	c, err := s.collabs.GetCollaboratorForUser(ctx, rec.ID, userID, email)
	if err != nil {
		if errors.Is(err, collab.ErrCollaboratorNotFound) {
			return collab.ResolveAccess(rec.UserID, userID, nil), nil
		}
		return collab.Access{}, err
	}
	return collab.ResolveAccess(rec.UserID, userID, c), nil
}

func (s *Service) loadRecipe(ctx context.Context, id string) (*Recipe, error) {
	key := cache.KeyRecipe(id)
	if b, ok := s.cache.Get(ctx, key); ok {
		var rec Recipe
		if err := json.Unmarshal(b, &rec); err == nil {
			return &rec, nil
		}
	}
	rec, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(rec); err == nil {
		s.cache.Set(ctx, key, b, s.ttl)
	}
	return rec, nil
}

func (s *Service) loadIngredients(ctx context.Context, recipeID string) ([]Ingredient, error) {
	key := cache.KeyRecipeIngredients(recipeID)
	if b, ok := s.cache.Get(ctx, key); ok {
		var rows []Ingredient
		if err := json.Unmarshal(b, &rows); err == nil {
			return rows, nil
		}
	}
	rows, err := s.repo.ListIngredients(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(rows); err == nil {
		s.cache.Set(ctx, key, b, s.ttl)
	}
	return rows, nil
}

func (s *Service) loadSteps(ctx context.Context, recipeID string) ([]Step, error) {
	key := cache.KeyRecipeSteps(recipeID)
	if b, ok := s.cache.Get(ctx, key); ok {
		var rows []Step
		if err := json.Unmarshal(b, &rows); err == nil {
			return rows, nil
		}
	}
	rows, err := s.repo.ListSteps(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(rows); err == nil {
		s.cache.Set(ctx, key, b, s.ttl)
	}
	return rows, nil
}

// normalizeIngredients drops rows missing a name, unit or quantity and
// re-indexes the survivors from zero, matching what the editor sends after a
// user leaves trailing blank rows in the form.
func normalizeIngredients(recipeID string, inputs []IngredientInput) []Ingredient {
	rows := make([]Ingredient, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		unit := strings.TrimSpace(in.Unit)
		if name == "" || unit == "" || in.Quantity == nil {
			continue
		}
		quantity := *in.Quantity
		if quantity < 0 {
			quantity = 0
		}
		rows = append(rows, Ingredient{
			ID:         uuid.NewString(),
			RecipeID:   recipeID,
			Name:       name,
			Quantity:   quantity,
			Unit:       unit,
			Notes:      in.Notes,
			OrderIndex: len(rows),
		})
	}
	return rows
}

// normalizeSteps drops blank instructions and renumbers from one.
func normalizeSteps(recipeID string, inputs []StepInput) []Step {
	rows := make([]Step, 0, len(inputs))
	for _, in := range inputs {
		instruction := strings.TrimSpace(in.Instruction)
		if instruction == "" {
			continue
		}
		rows = append(rows, Step{
			ID:           uuid.NewString(),
			RecipeID:     recipeID,
			StepNumber:   len(rows) + 1,
			Instruction:  instruction,
			TimerMinutes: in.TimerMinutes,
			ImageURL:     in.ImageURL,
			VideoURL:     in.VideoURL,
		})
	}
	return rows
}
