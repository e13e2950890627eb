package user

import (
	"context"

	"attendance/tracker/internal/entity"
)

type User interface {
	SearchUsers(term string) []entity.User
	GetUserByID(id string) (entity.User, bool)
	CreateUser(ctx context.Context, email, password, name string, role entity.Role) (entity.User, error)
	UpdateUser(ctx context.Context, id string, upd entity.UserUpdate) (bool, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
}
