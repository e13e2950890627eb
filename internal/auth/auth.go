// Package auth signs in users and validates the bearer tokens they present.
// A token is only honoured while its session exists, so signing out revokes
// it before it expires.
package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"attendance/tracker/internal/entity"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin = string(entity.RoleAdmin)
	RoleUser  = string(entity.RoleUser)
)

type ctxKey int

// Key is the context key the middleware stores Claims under.
const Key ctxKey = 1

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("account is disabled")
	ErrSessionExpired     = errors.New("session expired")
)

type Claims struct {
	UserId    string `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.StandardClaims
}

// Authorized reports whether the claims hold one of roles.
func (c Claims) Authorized(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// Users is what auth needs from the user store.
type Users interface {
	GetUserByEmail(email string) (entity.User, bool)
	GetUserByID(id string) (entity.User, bool)
}

type Auth struct {
	key      []byte
	ttl      time.Duration
	users    Users
	sessions SessionStore
	now      func() time.Time
}

func New(key string, ttl time.Duration, users Users, sessions SessionStore) *Auth {
	return &Auth{
		key:      []byte(key),
		ttl:      ttl,
		users:    users,
		sessions: sessions,
		now:      time.Now,
	}
}

// Login checks the credentials of an active user, opens a session and
// returns a signed token for it.
func (a *Auth) Login(ctx context.Context, email, password string) (string, entity.User, error) {
	user, ok := a.users.GetUserByEmail(email)
	if !ok || !CheckPassword(user.Password, password) {
		return "", entity.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", entity.User{}, ErrInactiveUser
	}

	now := a.now()
	claims := Claims{
		UserId:    user.ID,
		Role:      string(user.Role),
		SessionID: uuid.NewString(),
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(a.ttl).Unix(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", entity.User{}, errors.Wrap(err, "signing token")
	}

	if err = a.sessions.Create(ctx, claims.SessionID, user.ID, a.ttl); err != nil {
		return "", entity.User{}, errors.Wrap(err, "creating session")
	}

	return token, user, nil
}

// Logout ends the session behind claims.
func (a *Auth) Logout(ctx context.Context, claims Claims) error {
	if err := a.sessions.Delete(ctx, claims.SessionID); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

// ValidateToken verifies the signature, the expiry, the session and that the
// user is still active. Roles are refreshed from the store.
func (a *Auth) ValidateToken(ctx context.Context, tokenStr string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.key, nil
	})
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing token")
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}

	ok, err := a.sessions.Exists(ctx, claims.SessionID)
	if err != nil {
		return Claims{}, errors.Wrap(err, "checking session")
	}
	if !ok {
		return Claims{}, ErrSessionExpired
	}

	user, found := a.users.GetUserByID(claims.UserId)
	if !found {
		return Claims{}, errors.New("user no longer exists")
	}
	if !user.IsActive {
		return Claims{}, ErrInactiveUser
	}
	claims.Role = string(user.Role)

	return claims, nil
}

// GetClaims returns the claims the middleware stored in ctx.
func GetClaims(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(Key).(Claims)
	return claims, ok
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

// CheckPassword compares given with the stored password, which is either a
// bcrypt hash or the plain text itself.
func CheckPassword(stored, given string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcrypt(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
