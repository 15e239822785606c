package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleEditor      Role = "editor"
	RoleContributor Role = "contributor"
	RoleSponsor     Role = "sponsor"
	RoleSubscriber  Role = "subscriber"
)

// DefaultRole is assigned to every newly created user.
const DefaultRole = RoleSubscriber

var roleLevels = map[Role]int{
	RoleAdmin:       0,
	RoleEditor:      10,
	RoleContributor: 100,
	RoleSponsor:     1000,
	RoleSubscriber:  10000,
}

// Level returns the privilege level; lower means more privileged.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return roleLevels[RoleSubscriber]
}

func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

func ParseRole(v string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(v)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", v)
	}
	return r, nil
}
