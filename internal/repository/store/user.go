package store

import (
	"context"
	"sort"
	"strings"

	"attendance/tracker/internal/entity"
)

// indexByEmail returns the position of the user with exactly this email, or
// -1. Callers hold the lock.
func (s *Store) indexByEmail(email string) int {
	for i, u := range s.users {
		if u.Email == email {
			return i
		}
	}
	return -1
}

func (s *Store) indexByID(id string) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// CreateUser adds an active user. An empty role means entity.RoleUser.
// Emails are compared exactly.
func (s *Store) CreateUser(ctx context.Context, email, password, name string, role entity.Role) (entity.User, error) {
	if role == "" {
		role = entity.RoleUser
	}
	if !role.Valid() {
		return entity.User{}, ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexByEmail(email) >= 0 {
		return entity.User{}, ErrDuplicateEmail
	}

	user := entity.User{
		ID:        s.newID(),
		Email:     email,
		Password:  password,
		Name:      name,
		Role:      role,
		CreatedAt: s.now(),
		IsActive:  true,
	}

	users := append(append([]entity.User(nil), s.users...), user)
	if err := s.saveUsers(ctx, users); err != nil {
		return entity.User{}, err
	}

	return user, nil
}

func (s *Store) GetUserByEmail(email string) (entity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexByEmail(email)
	if i < 0 {
		return entity.User{}, false
	}
	return s.users[i], true
}

func (s *Store) GetUserByID(id string) (entity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexByID(id)
	if i < 0 {
		return entity.User{}, false
	}
	return s.users[i], true
}

// GetAllUsers returns every user, newest first.
func (s *Store) GetAllUsers() []entity.User {
	s.mu.RLock()
	users := append([]entity.User(nil), s.users...)
	s.mu.RUnlock()

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	return users
}

// SearchUsers returns the users whose name or email contains term, ignoring
// case, newest first. An empty term matches everyone.
func (s *Store) SearchUsers(term string) []entity.User {
	users := s.GetAllUsers()

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return users
	}

	out := users[:0]
	for _, u := range users {
		if matches(term, u.Name, u.Email) {
			out = append(out, u)
		}
	}

	return out
}

// UpdateUser merges the non nil fields of upd into the user. It reports
// false when no user has this id.
func (s *Store) UpdateUser(ctx context.Context, id string, upd entity.UserUpdate) (bool, error) {
	if upd.Role != nil && !upd.Role.Valid() {
		return false, ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(id)
	if i < 0 {
		return false, nil
	}

	user := s.users[i]
	if upd.Email != nil && *upd.Email != user.Email {
		if s.indexByEmail(*upd.Email) >= 0 {
			return false, ErrDuplicateEmail
		}
		user.Email = *upd.Email
	}
	if upd.Password != nil {
		user.Password = *upd.Password
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Role != nil {
		user.Role = *upd.Role
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}

	users := append([]entity.User(nil), s.users...)
	users[i] = user

	if err := s.saveUsers(ctx, users); err != nil {
		return false, err
	}

	return true, nil
}

// DeleteUser removes the user and every attendance record that references
// it. It reports false when no user has this id.
func (s *Store) DeleteUser(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(id)
	if i < 0 {
		return false, nil
	}

	users := make([]entity.User, 0, len(s.users)-1)
	users = append(users, s.users[:i]...)
	users = append(users, s.users[i+1:]...)

	if err := s.saveUsers(ctx, users); err != nil {
		return false, err
	}

	records := make([]entity.AttendanceRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.UserID != id {
			records = append(records, r)
		}
	}

	if err := s.saveRecords(ctx, records); err != nil {
		return true, err
	}

	return true, nil
}

func matches(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
