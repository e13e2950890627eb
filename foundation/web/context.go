package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Context is the per request value handed to every Handler.
type Context struct {
	*gin.Context
	Ctx context.Context

	log       *log.Logger
	paramErrs []string
	queryErrs []string
}

// Respond writes data as JSON with the given status.
func (c *Context) Respond(data interface{}, status int) error {
	if status == http.StatusNoContent {
		c.Status(status)
		return nil
	}

	c.JSON(status, data)
	return nil
}

// RespondError renders err for the client. Errors that are not request errors
// are logged and hidden behind a 500.
func (c *Context) RespondError(err error) error {
	var re *Error
	if errors.As(err, &re) {
		c.AbortWithStatusJSON(re.Status, map[string]interface{}{
			"error":  re.Error(),
			"status": false,
		})
		return nil
	}

	if c.log != nil {
		c.log.Printf("ERROR : %s %s : %+v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, map[string]interface{}{
		"error":  http.StatusText(http.StatusInternalServerError),
		"status": false,
	})
	return nil
}

// BindFunc binds the request body (json or form) into obj and checks that
// the named fields are set. A name may hold several comma separated fields.
func (c *Context) BindFunc(obj interface{}, required ...string) error {
	if err := c.ShouldBind(obj); err != nil {
		return NewRequestError(errors.Wrap(err, "binding request"), http.StatusBadRequest)
	}

	var missing []string
	v := reflect.Indirect(reflect.ValueOf(obj))
	for _, group := range required {
		for _, name := range strings.Split(group, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			f := v.FieldByName(name)
			if !f.IsValid() || f.IsZero() {
				missing = append(missing, name)
			}
		}
	}

	if len(missing) > 0 {
		return NewRequestError(fmt.Errorf("required fields are missing: %s", strings.Join(missing, ", ")), http.StatusBadRequest)
	}

	return nil
}

// GetParam reads a path parameter as kind. Failures are collected and
// reported by ValidParam.
func (c *Context) GetParam(kind reflect.Kind, name string) interface{} {
	raw := c.Param(name)

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.paramErrs = append(c.paramErrs, fmt.Sprintf("%s must be an integer", name))
		}
		return v
	default:
		if strings.TrimSpace(raw) == "" {
			c.paramErrs = append(c.paramErrs, fmt.Sprintf("%s is required", name))
		}
		return raw
	}
}

// ValidParam returns the errors collected by GetParam.
func (c *Context) ValidParam() error {
	if len(c.paramErrs) == 0 {
		return nil
	}

	return NewRequestError(errors.New(strings.Join(c.paramErrs, "; ")), http.StatusBadRequest)
}

// GetQueryFunc reads an optional query value. It returns a pointer of the
// requested kind, or nil when the key is absent or malformed.
func (c *Context) GetQueryFunc(kind reflect.Kind, name string) interface{} {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.queryErrs = append(c.queryErrs, fmt.Sprintf("%s must be an integer", name))
			return nil
		}
		return &v
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.queryErrs = append(c.queryErrs, fmt.Sprintf("%s must be a boolean", name))
			return nil
		}
		return &v
	default:
		return &raw
	}
}

// ValidQuery returns the errors collected by GetQueryFunc.
func (c *Context) ValidQuery() error {
	if len(c.queryErrs) == 0 {
		return nil
	}

	return NewRequestError(errors.New(strings.Join(c.queryErrs, "; ")), http.StatusBadRequest)
}
