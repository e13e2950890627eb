package auth

import (
	"context"

	authn "attendance/tracker/internal/auth"
	"attendance/tracker/internal/entity"
)

type Auth interface {
	Login(ctx context.Context, email, password string) (string, entity.User, error)
	Logout(ctx context.Context, claims authn.Claims) error
}

type User interface {
	GetUserByID(id string) (entity.User, bool)
}
