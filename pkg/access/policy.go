package access

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrUserNotFound     = errors.New("user not found")
	ErrBadCredentials   = errors.New("invalid username or password")
)

// Policy decides who may change whose password. Managers and supervisors may change the
// password of any non-privileged user; everyone may change their own.
type Policy struct {
	Managers    []string
	Supervisors []string
}

// DefaultPolicy returns the hospital's management hierarchy
func DefaultPolicy() Policy {
	return Policy{
		Managers:    []string{"matlabi", "kand", "mahlouji"},
		Supervisors: []string{"mostafavi"},
	}
}

// Privileged reports whether username belongs to a manager or supervisor
func (p Policy) Privileged(username string) bool {
	return lo.Contains(p.Managers, username) || lo.Contains(p.Supervisors, username)
}

// CanSetPassword reports whether current may set target's password
func (p Policy) CanSetPassword(current, target types.User) bool {
	if current.ID == target.ID {
		return true
	}
	return p.Privileged(current.Username) && !p.Privileged(target.Username)
}

// SetPassword checks the hierarchy and stores a new hashed password for the target user,
// enabling password login for them. settings is modified in place.
func (p Policy) SetPassword(settings *types.Settings, targetUserID, newPassword, currentUsername string) error {
	current, ok := settings.FindUsername(currentUsername)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, currentUsername)
	}
	target, ok := settings.FindUser(targetUserID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, targetUserID)
	}
	if !p.CanSetPassword(*current, *target) {
		return ErrPermissionDenied
	}

	h, err := Hash(newPassword)
	if err != nil {
		return err
	}
	target.Password = h
	target.IsPasswordEnabled = true
	return nil
}

// Login checks a user's credentials. Users without an enabled password log in by username alone.
func Login(settings *types.Settings, username, password string) (*types.User, error) {
	u, ok := settings.FindUsername(username)
	if !ok {
		return nil, ErrBadCredentials
	}
	if u.IsPasswordEnabled && !Verify(u.Password, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// DeveloperLogin checks the developer panel password
func DeveloperLogin(settings *types.Settings, password string) error {
	if settings.DeveloperPassword == "" || !Verify(settings.DeveloperPassword, password) {
		return ErrBadCredentials
	}
	return nil
}
