// Package session holds the client's view of "who is logged in": the
// persisted session store, the login/logout event bus, and the reconciler
// that derives the current auth state from the store. It is a leaf package
// with no internal imports.
package session

// Role is the backend-assigned user role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the user snapshot captured at login time. It mirrors the
// backend wire shape and is not incrementally updated; a profile edit
// goes through the backend and lands here on the next login or refetch.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Session pairs an auth token with the profile it belongs to. Both halves
// present means logged in; anything less is treated as logged out.
type Session struct {
	Token   string
	Profile Profile
}
