package store

import (
	"context"

	"attendance/tracker/internal/entity"
)

type account struct {
	email    string
	password string
	name     string
	role     entity.Role
}

var defaultAccounts = []account{
	{email: "admin@kinster.com", password: "admin123", name: "Administrator", role: entity.RoleAdmin},
	{email: "user@kinster.com", password: "user123", name: "Test User", role: entity.RoleUser},
}

// seed inserts the default accounts when no admin exists. An account whose
// email is already taken is skipped.
func (s *Store) seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Role == entity.RoleAdmin {
			return nil
		}
	}

	users := append([]entity.User(nil), s.users...)
	now := s.now()

	for _, a := range defaultAccounts {
		if s.indexByEmail(a.email) >= 0 {
			continue
		}

		users = append(users, entity.User{
			ID:        s.newID(),
			Email:     a.email,
			Password:  a.password,
			Name:      a.name,
			Role:      a.role,
			CreatedAt: now,
			IsActive:  true,
		})
	}

	s.log.Printf("store : seeding default accounts")

	if err := s.saveUsers(ctx, users); err != nil {
		return err
	}

	if s.records == nil {
		return s.saveRecords(ctx, nil)
	}

	return nil
}
