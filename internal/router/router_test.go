package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/pkg/storage"
	"attendance/tracker/internal/repository/store"
	"attendance/tracker/internal/service/attendance"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Status bool            `json:"status"`
	Error  string          `json:"error"`
}

func setup(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := store.New(context.Background(), storage.NewMemory(), nil)
	require.NoError(t, err)

	svc := attendance.NewService(repo)
	a := auth.New("test-key", time.Hour, repo, auth.NewMemorySessions())

	app := web.NewApp(log.New(io.Discard, "", 0))
	NewRouter(app, repo, svc, a, nil, false).Init()

	return app, repo
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func signIn(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()

	w := do(t, h, http.MethodPost, "/api/v1/sign-in", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &data)
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

var office = map[string]float64{"latitude": 35.6895, "longitude": 139.6917}

func TestSignIn(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodPost, "/api/v1/sign-in", "", map[string]string{"email": "admin@kinster.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decode(t, w, nil).Status)

	w = do(t, h, http.MethodPost, "/api/v1/sign-in", "", map[string]string{"email": "admin@kinster.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := signIn(t, h, "admin@kinster.com", "admin123")

	w = do(t, h, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]interface{}
	decode(t, w, &me)
	assert.Equal(t, "Administrator", me["name"])
	assert.NotContains(t, me, "password")
}

func TestSignOutRevokesToken(t *testing.T) {
	h, _ := setup(t)
	token := signIn(t, h, "user@kinster.com", "user123")

	w := do(t, h, http.MethodPost, "/api/v1/sign-out", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationRequired(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodGet, "/api/v1/attendance/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/attendance/state", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := signIn(t, h, "user@kinster.com", "user123")
	for _, path := range []string{"/api/v1/user/list", "/api/v1/attendance/list", "/api/v1/attendance/export"} {
		w = do(t, h, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}

func TestClockInClockOut(t *testing.T) {
	h, repo := setup(t)
	token := signIn(t, h, "user@kinster.com", "user123")

	var state attendance.Status
	w := do(t, h, http.MethodGet, "/api/v1/attendance/state", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.Equal(t, attendance.Idle, state.State)

	w = do(t, h, http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.GetAttendanceRecords(""))

	w = do(t, h, http.MethodPost, "/api/v1/attendance/clock-in", token, map[string]interface{}{"error_code": 1, "error_message": "User denied Geolocation"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w, nil).Error, "User denied Geolocation")

	w = do(t, h, http.MethodPost, "/api/v1/attendance/clock-in", token, office)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/v1/attendance/clock-in", token, office)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/attendance/state", token, nil)
	decode(t, w, &state)
	assert.Equal(t, attendance.Working, state.State)
	require.NotNil(t, state.Active)
	assert.Equal(t, 35.6895, state.Active.LoginLocationLat)

	w = do(t, h, http.MethodPost, "/api/v1/attendance/clock-out", token, office)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var closed map[string]interface{}
	decode(t, w, &closed)
	assert.Contains(t, closed, "logout_time")
	assert.Contains(t, closed, "total_hours")
	assert.Equal(t, "0h 0m", closed["duration"])

	w = do(t, h, http.MethodPost, "/api/v1/attendance/clock-out", token, office)
	assert.Equal(t, http.StatusConflict, w.Code)

	var history struct {
		Count int `json:"count"`
	}
	w = do(t, h, http.MethodGet, "/api/v1/attendance/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &history)
	assert.Equal(t, 1, history.Count)
}

func TestAttendanceListAndExport(t *testing.T) {
	h, _ := setup(t)
	user := signIn(t, h, "user@kinster.com", "user123")
	admin := signIn(t, h, "admin@kinster.com", "admin123")

	w := do(t, h, http.MethodPost, "/api/v1/attendance/clock-in", user, office)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Results []struct {
			UserName  string `json:"user_name"`
			UserEmail string `json:"user_email"`
		} `json:"results"`
		Count int `json:"count"`
	}
	w = do(t, h, http.MethodGet, "/api/v1/attendance/list?search=TEST", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Test User", list.Results[0].UserName)

	w = do(t, h, http.MethodGet, "/api/v1/attendance/list?search=admin", admin, nil)
	decode(t, w, &list)
	assert.Equal(t, 0, list.Count)

	w = do(t, h, http.MethodGet, "/api/v1/attendance/list?date=yesterday", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/attendance/list?limit=x", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/attendance/export", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance.xlsx")

	w = do(t, h, http.MethodGet, "/api/v1/attendance/export?format=pdf", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = do(t, h, http.MethodGet, "/api/v1/attendance/export?format=csv", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserManagement(t *testing.T) {
	h, repo := setup(t)
	admin := signIn(t, h, "admin@kinster.com", "admin123")

	body := map[string]string{"email": "jane@kinster.com", "password": "jane123", "name": "Jane"}
	w := do(t, h, http.MethodPost, "/api/v1/user/create", admin, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created map[string]interface{}
	decode(t, w, &created)
	assert.Equal(t, "user", created["role"])
	assert.NotContains(t, created, "password")
	id := created["id"].(string)

	w = do(t, h, http.MethodPost, "/api/v1/user/create", admin, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/user/create", admin, map[string]string{"email": "x@kinster.com", "password": "x", "name": "X", "role": "boss"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var list struct {
		Results []map[string]interface{} `json:"results"`
		Count   int                      `json:"count"`
	}
	w = do(t, h, http.MethodGet, "/api/v1/user/list?search=jane", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = do(t, h, http.MethodGet, "/api/v1/user/list?limit=1&page=2", admin, nil)
	decode(t, w, &list)
	assert.Equal(t, 3, list.Count)
	assert.Len(t, list.Results, 1)

	w = do(t, h, http.MethodPatch, "/api/v1/user/"+id, admin, map[string]interface{}{"name": "Jane Doe", "password": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u, ok := repo.GetUserByID(id)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", u.Name)
	assert.Equal(t, "jane123", u.Password)

	w = do(t, h, http.MethodPatch, "/api/v1/user/"+id, admin, map[string]interface{}{"email": "user@kinster.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPatch, "/api/v1/user/missing", admin, map[string]interface{}{"name": "Nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/user/"+id+"/qrcode", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = do(t, h, http.MethodGet, "/api/v1/user/"+id+"/qrcode?size=10", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	jane := signIn(t, h, "jane@kinster.com", "jane123")
	w = do(t, h, http.MethodPost, "/api/v1/attendance/clock-in", jane, office)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, "/api/v1/user/"+id, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.GetAttendanceRecords(id))

	w = do(t, h, http.MethodGet, "/api/v1/user/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/me", jane, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeactivatedUserIsSignedOut(t *testing.T) {
	h, repo := setup(t)
	admin := signIn(t, h, "admin@kinster.com", "admin123")
	user := signIn(t, h, "user@kinster.com", "user123")

	u, ok := repo.GetUserByEmail("user@kinster.com")
	require.True(t, ok)

	w := do(t, h, http.MethodPatch, "/api/v1/user/"+u.ID, admin, map[string]interface{}{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/attendance/state", user, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/sign-in", "", map[string]string{"email": "user@kinster.com", "password": "user123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	h, repo := setup(t)
	admin := signIn(t, h, "admin@kinster.com", "admin123")

	u, ok := repo.GetUserByEmail("admin@kinster.com")
	require.True(t, ok)

	w := do(t, h, http.MethodDelete, "/api/v1/user/"+u.ID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := setup(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sign-in", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestImportUsers(t *testing.T) {
	h, repo := setup(t)
	admin := signIn(t, h, "admin@kinster.com", "admin123")

	w := do(t, h, http.MethodGet, "/api/v1/user/import_template", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"jane@kinster.com", "jane123", "Jane"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"user@kinster.com", "user123", "Test User"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"broken", "x", "X"}))

	var file bytes.Buffer
	require.NoError(t, f.Write(&file))
	require.NoError(t, f.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "users.xlsx")
	require.NoError(t, err)
	_, err = part.Write(file.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Created     int   `json:"created"`
		SkippedRows []int `json:"skipped_rows"`
	}
	decode(t, rec, &result)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []int{3, 4}, result.SkippedRows)

	_, ok := repo.GetUserByEmail("jane@kinster.com")
	assert.True(t, ok)
}
