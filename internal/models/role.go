package models

import (
	"database/sql/driver"
	"fmt"
)

// Role is the closed set of account roles. There is no fallback role.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleTeamLead Role = "TeamLead"
	RoleManager  Role = "Manager"
)

var roles = map[string]Role{
	string(RoleEmployee): RoleEmployee,
	string(RoleTeamLead): RoleTeamLead,
	string(RoleManager):  RoleManager,
}

// ParseRole returns the Role for an exact role name.
func ParseRole(s string) (Role, bool) {
	r, ok := roles[s]
	return r, ok
}

func (r Role) Valid() bool {
	_, ok := roles[string(r)]
	return ok
}

// Value implements driver.Valuer so an unknown role never reaches the table.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %q", string(r))
	}
	return string(r), nil
}

// Scan implements sql.Scanner.
func (r *Role) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
	parsed, ok := ParseRole(s)
	if !ok {
		return fmt.Errorf("invalid role %q", s)
	}
	*r = parsed
	return nil
}
