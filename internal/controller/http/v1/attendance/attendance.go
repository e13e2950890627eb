package attendance

import (
	"bytes"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/pkg/geolocation"
	"attendance/tracker/internal/pkg/timeutil"
	"attendance/tracker/internal/repository/store"
	attendance_service "attendance/tracker/internal/service/attendance"
	"attendance/tracker/internal/service/report"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

type Controller struct {
	attendance Attendance
	records    Records
}

func NewController(attendance Attendance, records Records) *Controller {
	return &Controller{attendance, records}
}

func (uc Controller) State(c *web.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return c.RespondError(err)
	}

	status, err := uc.attendance.State(claims.UserId)
	if err != nil {
		return c.RespondError(serviceError(err))
	}

	return c.Respond(map[string]interface{}{
		"data":   status,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) ClockIn(c *web.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return c.RespondError(err)
	}

	reading, err := bindReading(c)
	if err != nil {
		return c.RespondError(err)
	}

	record, err := uc.attendance.ClockIn(c.Ctx, claims.UserId, reading)
	if err != nil {
		return c.RespondError(serviceError(err))
	}

	return c.Respond(map[string]interface{}{
		"data":   toRecordResponse(record),
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) ClockOut(c *web.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return c.RespondError(err)
	}

	reading, err := bindReading(c)
	if err != nil {
		return c.RespondError(err)
	}

	record, err := uc.attendance.ClockOut(c.Ctx, claims.UserId, reading)
	if err != nil {
		return c.RespondError(serviceError(err))
	}

	return c.Respond(map[string]interface{}{
		"data":   toRecordResponse(record),
		"status": true,
	}, http.StatusOK)
}

// History lists the caller's own records, newest first.
func (uc Controller) History(c *web.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return c.RespondError(err)
	}

	records := uc.records.GetAttendanceRecords(claims.UserId)
	list := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		list = append(list, toRecordResponse(r))
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   len(list),
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetList(c *web.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return c.RespondError(err)
	}

	rows, count := uc.records.SearchAttendance(filter)
	list := make([]ListResponse, 0, len(rows))
	for _, r := range rows {
		list = append(list, ListResponse{AttendanceWithUser: r, Duration: duration(r.AttendanceRecord)})
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   count,
		},
		"status": true,
	}, http.StatusOK)
}

// Export renders the filtered list, without paging, as xlsx (default) or pdf.
func (uc Controller) Export(c *web.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return c.RespondError(err)
	}
	filter.Limit, filter.Offset, filter.Page = nil, nil, nil

	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	rows, _ := uc.records.SearchAttendance(filter)

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = report.AttendanceXLSX(&buf, rows)
	case "pdf":
		contentType = "application/pdf"
		title := "Attendance Report"
		if filter.Date != nil {
			title += " - " + timeutil.FormatDate(filter.Date.Time)
		}
		err = report.AttendancePDF(&buf, title, rows)
	default:
		return c.RespondError(web.NewRequestError(errors.Errorf("unsupported format %q", format), http.StatusBadRequest))
	}
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance.%s", format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
	return nil
}

func listFilter(c *web.Context) (store.AttendanceFilter, error) {
	var filter store.AttendanceFilter

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
	if userID, ok := c.GetQueryFunc(reflect.String, "user_id").(*string); ok {
		filter.UserID = userID
	}
	if err := c.ValidQuery(); err != nil {
		return filter, err
	}

	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := date.ParseDate(dateStr)
		if err != nil {
			return filter, web.NewRequestError(errors.New("invalid date format, expected YYYY-MM-DD"), http.StatusBadRequest)
		}
		filter.Date = &parsed
	}

	return filter, nil
}

// bindReading reads the client reported position. An empty body yields an
// empty reading, which the service rejects as a missing location.
func bindReading(c *web.Context) (geolocation.Reading, error) {
	var reading geolocation.Reading
	if c.Request.ContentLength == 0 {
		return reading, nil
	}

	if err := c.BindFunc(&reading); err != nil {
		return reading, err
	}
	return reading, nil
}

func currentClaims(c *web.Context) (auth.Claims, error) {
	claims, ok := auth.GetClaims(c.Ctx)
	if !ok {
		return auth.Claims{}, web.NewRequestError(errors.New("unauthorized"), http.StatusUnauthorized)
	}
	return claims, nil
}

func serviceError(err error) error {
	switch {
	case errors.Is(err, attendance_service.ErrLocationUnavailable),
		errors.Is(err, attendance_service.ErrOutsideOffice):
		return web.NewRequestError(err, http.StatusBadRequest)
	case errors.Is(err, attendance_service.ErrAlreadyWorking),
		errors.Is(err, attendance_service.ErrNotWorking),
		errors.Is(err, attendance_service.ErrActionPending):
		return web.NewRequestError(err, http.StatusConflict)
	case errors.Is(err, attendance_service.ErrUserRequired):
		return web.NewRequestError(err, http.StatusForbidden)
	default:
		return err
	}
}
