package user

import (
	"time"

	"attendance/tracker/internal/entity"
)

type Filter struct {
	Limit  *int
	Offset *int
	Page   *int
	Search *string
}

type CreateRequest struct {
	Email    string      `json:"email" form:"email"`
	Password string      `json:"password" form:"password"`
	Name     string      `json:"name" form:"name"`
	Role     entity.Role `json:"role" form:"role"`
}

type UpdateRequest struct {
	Email    *string      `json:"email" form:"email"`
	Password *string      `json:"password" form:"password"`
	Name     *string      `json:"name" form:"name"`
	Role     *entity.Role `json:"role" form:"role"`
	IsActive *bool        `json:"is_active" form:"is_active"`
}

// GetListResponse is a user as shown to administrators. The password never
// leaves the server.
type GetListResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      entity.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	IsActive  bool        `json:"is_active"`
}

func toResponse(u entity.User) GetListResponse {
	return GetListResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		IsActive:  u.IsActive,
	}
}

// bounds applies limit and offset (or page) to n items and returns the bounds.
func bounds(n int, f Filter) (int, int) {
	offset := 0
	if f.Offset != nil && *f.Offset > 0 {
		offset = *f.Offset
	}

	if f.Limit == nil || *f.Limit <= 0 {
		if offset > n {
			offset = n
		}
		return offset, n
	}

	limit := *f.Limit
	if f.Page != nil && *f.Page > 0 {
		offset = (*f.Page - 1) * limit
	}
	if offset > n {
		offset = n
	}

	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}
