package access

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

// IsHash reports whether s is a bcrypt hash
func IsHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// Hash returns the bcrypt hash of a plain password. Existing hashes are returned unchanged.
func Hash(password string) (string, error) {
	if password == "" || IsHash(password) {
		return password, nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// Verify compares a plain password with a stored value. Stored values written before hashing
// was introduced are compared in constant time.
func Verify(stored, password string) bool {
	if IsHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// PrepareSettings hashes every plain password of incoming before it is persisted.
// A blank password keeps the hash stored in previous for the same user (or the developer
// password), so clients that never see hashes can save settings without resetting them.
func PrepareSettings(incoming types.Settings, previous *types.Settings) (types.Settings, error) {
	out := incoming

	dev := incoming.DeveloperPassword
	if dev == "" && previous != nil {
		dev = previous.DeveloperPassword
	}
	h, err := Hash(dev)
	if err != nil {
		return types.Settings{}, err
	}
	out.DeveloperPassword = h

	out.Users = make([]types.User, len(incoming.Users))
	for i, u := range incoming.Users {
		if u.Password == "" && u.IsPasswordEnabled && previous != nil {
			if old, ok := previous.FindUser(u.ID); ok {
				u.Password = old.Password
			}
		}
		if u.Password, err = Hash(u.Password); err != nil {
			return types.Settings{}, fmt.Errorf("user %s: %w", u.Username, err)
		}
		out.Users[i] = u
	}
	return out, nil
}
