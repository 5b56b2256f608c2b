package collab

import "recipe-share-go/internal/cache"

// mutationKeys is the full key set a collaborator mutation can stale: the
// recipe's cached detail bundle and collaborator list, plus the per-user
// collaboration lists and dashboard stats of everyone the row touches.
// Declaring the set here, next to the mutations, is what keeps invalidation
// complete; callers never assemble key lists by hand.
func mutationKeys(recipeID string, userIDs ...string) []string {
	keys := []string{
		cache.KeyRecipe(recipeID),
		cache.KeyRecipeIngredients(recipeID),
		cache.KeyRecipeSteps(recipeID),
		cache.KeyRecipeCollaborators(recipeID),
	}
	seen := map[string]bool{}
	for _, id := range userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys,
			cache.KeyUserCollaborations(id),
			cache.KeyUserStats(id),
		)
	}
	return keys
}
