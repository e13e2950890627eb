package auth

import (
	"net/http"

	"attendance/tracker/foundation/web"
	authn "attendance/tracker/internal/auth"
	"attendance/tracker/internal/entity"

	"github.com/pkg/errors"
)

type Controller struct {
	auth Auth
	user User
}

func NewController(auth Auth, user User) *Controller {
	return &Controller{auth: auth, user: user}
}

type SignInRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type UserResponse struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     entity.Role `json:"role"`
	IsActive bool        `json:"is_active"`
}

func toUserResponse(u entity.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, IsActive: u.IsActive}
}

func (uc Controller) SignIn(c *web.Context) error {
	var data SignInRequest

	if err := c.BindFunc(&data, "Email", "Password"); err != nil {
		return c.RespondError(err)
	}

	token, user, err := uc.auth.Login(c.Ctx, data.Email, data.Password)
	if err != nil {
		if errors.Is(err, authn.ErrInvalidCredentials) || errors.Is(err, authn.ErrInactiveUser) {
			return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
		}
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"status": true,
		"data": map[string]interface{}{
			"access_token": token,
			"user":         toUserResponse(user),
		},
	}, http.StatusOK)
}

func (uc Controller) SignOut(c *web.Context) error {
	claims, ok := authn.GetClaims(c.Ctx)
	if !ok {
		return c.RespondError(web.NewRequestError(errors.New("unauthorized"), http.StatusUnauthorized))
	}

	if err := uc.auth.Logout(c.Ctx, claims); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Me(c *web.Context) error {
	claims, ok := authn.GetClaims(c.Ctx)
	if !ok {
		return c.RespondError(web.NewRequestError(errors.New("unauthorized"), http.StatusUnauthorized))
	}

	user, found := uc.user.GetUserByID(claims.UserId)
	if !found {
		return c.RespondError(web.NewRequestError(errors.New("user not found"), http.StatusNotFound))
	}

	return c.Respond(map[string]interface{}{
		"data":   toUserResponse(user),
		"status": true,
	}, http.StatusOK)
}
