package collab

import "time"

type Role string

const (
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	return r == RoleEditor || r == RoleViewer
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// Collaborator is one invite row. UserID is nil until the invite is claimed
// by a signed-in user whose email matches InvitedEmail.
type Collaborator struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	RecipeID     string    `gorm:"type:uuid;column:recipe_id"`
	UserID       *string   `gorm:"type:uuid;column:user_id"`
	InvitedEmail *string   `gorm:"column:invited_email"`
	Role         Role      `gorm:"column:role"`
	Status       Status    `gorm:"column:status"`
	InvitedBy    string    `gorm:"type:uuid;column:invited_by"`
	InvitedAt    time.Time `gorm:"column:invited_at"`
}

func (Collaborator) TableName() string { return "recipe_collaborators" }

// RecipeInfo is the slice of the recipes table this package needs for
// authorization decisions.
type RecipeInfo struct {
	ID       string
	OwnerID  string
	Title    string
	IsPublic bool
}

// ProfileRef is a tagged profile lookup. Found distinguishes a collaborator
// whose profile row is genuinely absent from one whose lookup failed; lookup
// failures are returned as errors and never produce a ProfileRef.
type ProfileRef struct {
	Found     bool
	UserID    string
	Email     *string
	FullName  *string
	AvatarURL *string
}

type CollaboratorView struct {
	Collaborator
	Profile ProfileRef
}

// Collaboration is a row on the invitee's side of the relation, joined to the
// recipe and its owner for the dashboard listing.
type Collaboration struct {
	Collaborator
	Recipe RecipeInfo
	Owner  ProfileRef
}
