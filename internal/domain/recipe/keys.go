package recipe

import "recipe-share-go/internal/cache"

// mutationKeys is the full key set a recipe mutation can stale. Collaborator
// dashboard lists are TTL-bound and tolerate a briefly stale title; every key
// derived from the recipe's own rows is dropped here.
func mutationKeys(recipeID, ownerID string) []string {
	return []string{
		cache.KeyRecipe(recipeID),
		cache.KeyRecipeIngredients(recipeID),
		cache.KeyRecipeSteps(recipeID),
		cache.KeyRecipeCollaborators(recipeID),
		cache.KeyUserStats(ownerID),
		cache.KeyUserCollaborations(ownerID),
	}
}
