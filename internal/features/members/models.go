// Package members is a read-only view of platform users.
// The auth provider owns the users table, this package only reads the
// fields leaderboards and profiles display.
package members

// Member is a platform user as shown next to scores.
type Member struct {
	ID          string `db:"id" json:"id"`
	Username    string `db:"username" json:"username,omitempty"`
	Name        string `db:"name" json:"name"`
	Avatar      string `db:"avatar" json:"avatar,omitempty"`
	Institution string `db:"institution" json:"institution,omitempty"`
	Verified    bool   `db:"verified" json:"verified"`
	Role        string `db:"role" json:"role"`
}

// DisplayName returns the name, or @username when the name is empty.
func (m *Member) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	if m.Username != "" {
		return "@" + m.Username
	}
	return m.ID
}
