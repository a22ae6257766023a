package models

// User represents a registered account.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"nombre"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose this to the client
}

// UserPatch carries the fields of a partial user update. A nil field was not
// supplied and is left untouched.
type UserPatch struct {
	Name     *string `json:"nombre"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// IsEmpty reports whether no field was supplied.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil
}
