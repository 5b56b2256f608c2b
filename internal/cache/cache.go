// Package cache is a process-wide query cache. Cached queries are named by
// the key builders below; every mutation declares the full set of keys it can
// affect and drops them in one call, so an invalidation list lives next to
// the mutation that needs it instead of being rebuilt ad hoc at call sites.
package cache

import (
	"context"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// Key builders, one per cached query. Keys embed every id the query depends
// on.

func KeyRecipe(recipeID string) string {
	return "recipe:" + recipeID
}

func KeyRecipeIngredients(recipeID string) string {
	return "recipe:" + recipeID + ":ingredients"
}

func KeyRecipeSteps(recipeID string) string {
	return "recipe:" + recipeID + ":steps"
}

func KeyRecipeCollaborators(recipeID string) string {
	return "recipe:" + recipeID + ":collaborators"
}

func KeyUserCollaborations(userID string) string {
	return "user:" + userID + ":collaborations"
}

func KeyUserStats(userID string) string {
	return "user:" + userID + ":stats"
}

// Noop satisfies Store and caches nothing. Used in tests and as the default
// when no backend is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool)             { return nil, false }
func (Noop) Set(context.Context, string, []byte, time.Duration)     {}
func (Noop) Delete(context.Context, ...string)                      {}
