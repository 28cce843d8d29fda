package domain

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Roles lists every role a user may hold.
var Roles = []Role{RoleAdmin, RoleCustomer}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Allow reports whether role is one of required.
func Allow(role Role, required ...Role) bool {
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Hash      string    `db:"password_hash" json:"-"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt Timestamp `db:"created_at" json:"-"`
}
