package recipe

import (
	"time"

	"github.com/lib/pq"

	"recipe-share-go/internal/domain/collab"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

type Recipe struct {
	ID               string         `gorm:"type:uuid;primaryKey"`
	UserID           string         `gorm:"type:uuid;column:user_id"`
	Title            string         `gorm:"column:title"`
	Description      *string        `gorm:"column:description"`
	Servings         int            `gorm:"column:servings"`
	PrepTime         *int           `gorm:"column:prep_time"`
	CookTime         *int           `gorm:"column:cook_time"`
	Difficulty       *Difficulty    `gorm:"column:difficulty"`
	Tags             pq.StringArray `gorm:"type:text[];column:tags"`
	FeaturedImageURL *string        `gorm:"column:featured_image_url"`
	IsPublic         bool           `gorm:"column:is_public"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
}

func (Recipe) TableName() string { return "recipes" }

type Ingredient struct {
	ID         string  `gorm:"type:uuid;primaryKey"`
	RecipeID   string  `gorm:"type:uuid;column:recipe_id"`
	Name       string  `gorm:"column:name"`
	Quantity   float64 `gorm:"column:quantity"`
	Unit       string  `gorm:"column:unit"`
	Notes      *string `gorm:"column:notes"`
	OrderIndex int     `gorm:"column:order_index"`
}

func (Ingredient) TableName() string { return "ingredients" }

type Step struct {
	ID           string  `gorm:"type:uuid;primaryKey"`
	RecipeID     string  `gorm:"type:uuid;column:recipe_id"`
	StepNumber   int     `gorm:"column:step_number"`
	Instruction  string  `gorm:"column:instruction"`
	TimerMinutes *int    `gorm:"column:timer_minutes"`
	ImageURL     *string `gorm:"column:image_url"`
	VideoURL     *string `gorm:"column:video_url"`
}

func (Step) TableName() string { return "recipe_steps" }

// Detail is the full recipe bundle plus the caller's resolved access. The
// bundle itself is user-independent and cacheable; Access is computed per
// caller after the fetch.
type Detail struct {
	Recipe      Recipe
	Ingredients []Ingredient
	Steps       []Step
	Access      collab.Access
}

type Stats struct {
	Recipes      int `json:"recipes"`
	Public       int `json:"public"`
	Drafts       int `json:"drafts"`
	TotalMinutes int `json:"total_minutes"`
}
