package valueobjects

import (
	"errors"
	"fmt"
	"strings"
)

// Role binds an uploaded image to its meaning in the composition.
type Role string

const (
	RoleSubject Role = "subject"
	RoleGarment Role = "garment"
)

var ErrUnknownRole = errors.New("unknown image role")

// Roles lists every role slot a session holds.
var Roles = []Role{RoleSubject, RoleGarment}

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleSubject, "person":
		return RoleSubject, nil
	case RoleGarment, "clothing":
		return RoleGarment, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

func (r Role) String() string {
	return string(r)
}
