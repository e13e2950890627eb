package user

import (
	"bytes"
	"net/http"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/repository/store"
	"attendance/tracker/internal/service/report"

	"github.com/pkg/errors"
)

type Controller struct {
	user          User
	hashPasswords bool
}

func NewController(user User, hashPasswords bool) *Controller {
	return &Controller{user, hashPasswords}
}

func (uc Controller) GetUserList(c *web.Context) error {
	var filter Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if search, ok := c.GetQueryFunc(reflect.String, "search").(*string); ok {
		filter.Search = search
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	var term string
	if filter.Search != nil {
		term = *filter.Search
	}

	users := uc.user.SearchUsers(term)
	from, to := bounds(len(users), filter)

	list := make([]GetListResponse, 0, to-from)
	for _, u := range users[from:to] {
		list = append(list, toResponse(u))
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   len(users),
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetUserDetailById(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	u, ok := uc.user.GetUserByID(id)
	if !ok {
		return c.RespondError(web.NewRequestError(errors.New("user not found"), http.StatusNotFound))
	}

	return c.Respond(map[string]interface{}{
		"data":   toResponse(u),
		"status": true,
	}, http.StatusOK)
}

// GetQrCode serves a PNG badge that encodes the user's email.
func (uc Controller) GetQrCode(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	size := report.DefaultQRSize
	if s, ok := c.GetQueryFunc(reflect.Int, "size").(*int); ok {
		size = *s
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	if size < 64 || size > 1024 {
		return c.RespondError(web.NewRequestError(errors.New("size must be between 64 and 1024"), http.StatusBadRequest))
	}

	u, ok := uc.user.GetUserByID(id)
	if !ok {
		return c.RespondError(web.NewRequestError(errors.New("user not found"), http.StatusNotFound))
	}

	png, err := report.QRCode(u.Email, size)
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", "inline; filename="+u.ID+".png")
	c.Data(http.StatusOK, "image/png", png)
	return nil
}

func (uc Controller) CreateUser(c *web.Context) error {
	var request CreateRequest
	if err := c.BindFunc(&request, "Email", "Password", "Name"); err != nil {
		return c.RespondError(err)
	}

	password, err := uc.password(request.Password)
	if err != nil {
		return c.RespondError(err)
	}

	u, err := uc.user.CreateUser(c.Ctx, strings.TrimSpace(request.Email), password, request.Name, request.Role)
	if err != nil {
		return c.RespondError(storeError(err))
	}

	return c.Respond(map[string]interface{}{
		"data":   toResponse(u),
		"status": true,
	}, http.StatusOK)
}

// UpdateUserColumns applies the fields present in the body. An empty
// password keeps the current one.
func (uc Controller) UpdateUserColumns(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request UpdateRequest
	if err := c.BindFunc(&request); err != nil {
		return c.RespondError(err)
	}

	upd := entity.UserUpdate{
		Email:    request.Email,
		Name:     request.Name,
		Role:     request.Role,
		IsActive: request.IsActive,
	}
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if email == "" {
			return c.RespondError(web.NewRequestError(errors.New("email must not be empty"), http.StatusBadRequest))
		}
		upd.Email = &email
	}
	if request.Password != nil && *request.Password != "" {
		password, err := uc.password(*request.Password)
		if err != nil {
			return c.RespondError(err)
		}
		upd.Password = &password
	}

	found, err := uc.user.UpdateUser(c.Ctx, id, upd)
	if err != nil {
		return c.RespondError(storeError(err))
	}
	if !found {
		return c.RespondError(web.NewRequestError(errors.New("user not found"), http.StatusNotFound))
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

// DeleteUser removes the user together with their attendance records.
func (uc Controller) DeleteUser(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if claims, ok := auth.GetClaims(c.Ctx); ok && claims.UserId == id {
		return c.RespondError(web.NewRequestError(errors.New("you cannot delete your own account"), http.StatusBadRequest))
	}

	found, err := uc.user.DeleteUser(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}
	if !found {
		return c.RespondError(web.NewRequestError(errors.New("user not found"), http.StatusNotFound))
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

// ImportUsers creates the accounts listed in an uploaded xlsx workbook. Rows
// that are invalid or whose email already exists are reported, not created.
func (uc Controller) ImportUsers(c *web.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "file is required"), http.StatusBadRequest))
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		return c.RespondError(web.NewRequestError(errors.New("invalid file type, expected .xlsx"), http.StatusBadRequest))
	}

	src, err := fh.Open()
	if err != nil {
		return c.RespondError(err)
	}
	defer src.Close()

	rows, skipped, err := report.ReadUsers(src)
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusBadRequest))
	}

	created := 0
	for _, r := range rows {
		password, err := uc.password(r.Password)
		if err != nil {
			return c.RespondError(err)
		}

		_, err = uc.user.CreateUser(c.Ctx, r.Email, password, r.Name, r.Role)
		if errors.Is(err, store.ErrDuplicateEmail) {
			skipped = append(skipped, r.Row)
			continue
		}
		if err != nil {
			return c.RespondError(err)
		}
		created++
	}
	sort.Ints(skipped)
	if skipped == nil {
		skipped = []int{}
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"created":      created,
			"skipped_rows": skipped,
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) ImportTemplate(c *web.Context) error {
	var buf bytes.Buffer
	if err := report.UsersTemplate(&buf); err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", "attachment; filename=users_template.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	return nil
}

func (uc Controller) password(plain string) (string, error) {
	if !uc.hashPasswords {
		return plain, nil
	}
	return auth.HashPassword(plain)
}

func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		return web.NewRequestError(err, http.StatusConflict)
	case errors.Is(err, store.ErrInvalidRole):
		return web.NewRequestError(err, http.StatusBadRequest)
	default:
		return err
	}
}
