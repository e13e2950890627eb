package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/middleware"
	"attendance/tracker/internal/repository/store"
	"attendance/tracker/internal/service/attendance"

	attendance_controller "attendance/tracker/internal/controller/http/v1/attendance"
	auth_controller "attendance/tracker/internal/controller/http/v1/auth"
	user_controller "attendance/tracker/internal/controller/http/v1/user"
)

type Router struct {
	*web.App
	store         *store.Store
	attendance    *attendance.Service
	auth          *auth.Auth
	origins       []string
	hashPasswords bool
}

func NewRouter(
	app *web.App,
	store *store.Store,
	attendance *attendance.Service,
	auth *auth.Auth,
	origins []string,
	hashPasswords bool,
) *Router {
	return &Router{
		app,
		store,
		attendance,
		auth,
		origins,
		hashPasswords,
	}
}

// Init registers every route on the app.
func (r Router) Init() {

	r.HandleMethodNotAllowed = true
	r.Use(middleware.CORS(r.origins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]interface{}{"status": true})
	})

	// controller
	authController := auth_controller.NewController(r.auth, r.store)
	userController := user_controller.NewController(r.store, r.hashPasswords)
	attendanceController := attendance_controller.NewController(r.attendance, r.store)

	// #auth
	r.Post("/api/v1/sign-in", authController.SignIn)
	r.Post("/api/v1/sign-out", authController.SignOut, middleware.Authenticate(r.auth))
	r.Get("/api/v1/me", authController.Me, middleware.Authenticate(r.auth))

	// #user
	r.Get("/api/v1/user/list", userController.GetUserList, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/user/import_template", userController.ImportTemplate, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/user/:id", userController.GetUserDetailById, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/user/:id/qrcode", userController.GetQrCode, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Post("/api/v1/user/create", userController.CreateUser, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Post("/api/v1/user/import", userController.ImportUsers, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Patch("/api/v1/user/:id", userController.UpdateUserColumns, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Delete("/api/v1/user/:id", userController.DeleteUser, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #attendance
	r.Get("/api/v1/attendance/state", attendanceController.State, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attendance/clock-in", attendanceController.ClockIn, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attendance/clock-out", attendanceController.ClockOut, middleware.Authenticate(r.auth))
	r.Get("/api/v1/attendance/history", attendanceController.History, middleware.Authenticate(r.auth))
	r.Get("/api/v1/attendance/list", attendanceController.GetList, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/attendance/export", attendanceController.Export, middleware.Authenticate(r.auth, auth.RoleAdmin))
}
