// Package web wraps gin with handlers that return errors and carry a
// request scoped context.
package web

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles one request. Returning a non nil error means the handler
// did not write a response itself.
type Handler func(c *Context) error

// Middleware wraps a Handler with extra behaviour.
type Middleware func(Handler) Handler

// App is the entrypoint for the http surface. It embeds gin so plain gin
// routes (static files, health checks) can still be registered.
type App struct {
	*gin.Engine
	log *log.Logger
	mw  []Middleware
}

// NewApp creates an App with the given application wide middleware.
func NewApp(log *log.Logger, mw ...Middleware) *App {
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &App{
		Engine: engine,
		log:    log,
		mw:     mw,
	}
}

// Handle registers handler for method and path. Route middleware runs in the
// order given, after the application middleware.
func (a *App) Handle(method, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)
	handler = wrapMiddleware(a.mw, handler)

	a.Engine.Handle(method, path, func(gc *gin.Context) {
		c := &Context{
			Context: gc,
			Ctx:     gc.Request.Context(),
			log:     a.log,
		}

		if err := handler(c); err != nil {
			_ = c.RespondError(err)
		}
	})
}

func (a *App) Get(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodGet, path, handler, mw...)
}

func (a *App) Post(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPost, path, handler, mw...)
}

func (a *App) Put(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPut, path, handler, mw...)
}

func (a *App) Patch(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPatch, path, handler, mw...)
}

func (a *App) Delete(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodDelete, path, handler, mw...)
}

// Logger returns the logger the App writes request failures to.
func (a *App) Logger() *log.Logger {
	return a.log
}

func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			handler = mw[i](handler)
		}
	}

	return handler
}

// Shutdown gracefully stops srv, waiting for in-flight requests until ctx
// expires.
func Shutdown(ctx context.Context, srv *http.Server) error {
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		return err
	}

	return nil
}
