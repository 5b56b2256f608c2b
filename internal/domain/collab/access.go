package collab

type Permission string

const (
	PermissionOwner  Permission = "owner"
	PermissionEditor Permission = "editor"
	PermissionViewer Permission = "viewer"
	PermissionNone   Permission = "none"
)

// Access is the resolved effective permission of one user on one recipe.
// Status surfaces the collaborator row's state for display even when it
// grants nothing (a pending or declined invite still renders in the UI).
type Access struct {
	Permission Permission
	Status     Status
}

// ResolveAccess derives the effective permission. Ownership wins outright;
// a collaborator row only grants its role once accepted.
func ResolveAccess(ownerID, userID string, c *Collaborator) Access {
	if userID != "" && userID == ownerID {
		return Access{Permission: PermissionOwner}
	}

	access := Access{Permission: PermissionNone}
	if c == nil {
		return access
	}
	access.Status = c.Status
	if c.Status != StatusAccepted {
		return access
	}
	switch c.Role {
	case RoleEditor:
		access.Permission = PermissionEditor
	case RoleViewer:
		access.Permission = PermissionViewer
	}
	return access
}

func (a Access) CanEdit() bool {
	return a.Permission == PermissionOwner || a.Permission == PermissionEditor
}

// CanView reports read access. Drafts are visible to the owner and to
// accepted collaborators of either role; public recipes to anyone.
func (a Access) CanView(isPublic bool) bool {
	if isPublic {
		return true
	}
	return a.Permission != PermissionNone
}

// AuthorizeEdit returns nil for an editing permission and otherwise the
// sentinel naming why the edit is denied.
func (a Access) AuthorizeEdit() error {
	if a.CanEdit() {
		return nil
	}
	switch {
	case a.Status == StatusPending:
		return ErrPendingInvite
	case a.Permission == PermissionViewer:
		return ErrViewerOnly
	default:
		return ErrNoAccess
	}
}
