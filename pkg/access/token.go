package access

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

// RoleDeveloper is the token role granted by the developer panel login
const RoleDeveloper = "developer"

// ErrInvalidToken is returned for tokens that fail signature or expiry checks
var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a bearer token
type Claims struct {
	Subject  string
	Username string
	Role     string
}

// Issuer signs and checks HS256 bearer tokens
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates a token issuer. A blank secret disables tokens.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether a signing secret is configured
func (i *Issuer) Enabled() bool {
	return i != nil && len(i.secret) > 0
}

// Issue returns a signed token for the claims
func (i *Issuer) Issue(c Claims) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["sub"] = c.Subject
	claims["username"] = c.Username
	claims["role"] = c.Role
	claims["iat"] = i.now().Unix()
	claims["exp"] = i.now().Add(i.ttl).Unix()

	t, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return t, nil
}

// Parse validates a token and returns its claims
func (i *Issuer) Parse(raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	str := func(k string) string {
		s, _ := claims[k].(string)
		return s
	}
	return Claims{Subject: str("sub"), Username: str("username"), Role: str("role")}, nil
}

// IsAdmin reports whether the claims grant administrative access
func (c Claims) IsAdmin() bool {
	return c.Role == RoleDeveloper || c.Role == types.RoleAdmin
}

// TokenRole is the role a login token carries for u. Admins who have not set a password only
// proved their username, so their token is limited to staff access.
func TokenRole(u types.User) string {
	if u.Role == types.RoleAdmin && !u.IsPasswordEnabled {
		return types.RoleStaff
	}
	return u.Role
}
