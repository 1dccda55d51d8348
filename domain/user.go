package domain

import "time"

// User represents a registered account. Accounts are created either by local
// registration (password supplied) or by the first successful Google handshake,
// in which case the password is a random, unusable placeholder that still goes
// through the normal hashing path.
type User struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Username       string    `bson:"username" json:"username"`
	Email          string    `bson:"email" json:"email"`
	PasswordHash   string    `bson:"password_hash" json:"-"`
	GoogleID       string    `bson:"google_id,omitempty" json:"-"`
	ProfilePicture string    `bson:"profile_picture,omitempty" json:"profilePicture,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"-"`
	UpdatedAt      time.Time `bson:"updated_at" json:"-"`
}

// Profile is the projection of a User returned to clients and posted to the
// opener window at the end of a handshake.
type Profile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Profile returns the client-facing projection of the user.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}
