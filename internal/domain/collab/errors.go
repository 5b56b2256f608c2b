package collab

import "errors"

var (
	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	ErrProfileNotFound      = errors.New("profile not found")

	ErrNotOwner          = errors.New("only the recipe owner can manage collaborators")
	ErrNotInvitee        = errors.New("only the invited user can respond to this invite")
	ErrInviteResolved    = errors.New("invite has already been responded to")
	ErrAlreadyInvited    = errors.New("this person is already a collaborator on the recipe")
	ErrCannotInviteOwner = errors.New("the recipe owner cannot be invited as a collaborator")
	ErrInvalidRole       = errors.New("role must be editor or viewer")
	ErrEmailRequired     = errors.New("an email address is required")

	// Edit denials carry the reason so handlers can surface distinct codes.
	ErrPendingInvite = errors.New("your invite is still pending, accept it to edit this recipe")
	ErrViewerOnly    = errors.New("you have view-only access to this recipe")
	ErrNoAccess      = errors.New("you do not have access to this recipe")
)
