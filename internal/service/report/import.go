package report

import (
	"io"
	"regexp"
	"strings"

	"attendance/tracker/internal/entity"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var importHeaders = []string{"Email", "Password", "Name", "Role"}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UserRow is one account read from an import workbook. Row is the 1-based
// spreadsheet row it came from.
type UserRow struct {
	Row      int
	Email    string
	Password string
	Name     string
	Role     entity.Role
}

// ReadUsers parses the first sheet of an import workbook, skipping the header.
// Rows with a missing field, a malformed email, an unknown role or an email
// seen earlier in the file are returned as invalid row numbers.
func ReadUsers(r io.Reader) ([]UserRow, []int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading rows")
	}

	var (
		users   []UserRow
		invalid []int
		seen    = make(map[string]struct{})
	)

	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}

		if len(row) < 3 {
			invalid = append(invalid, i+1)
			continue
		}

		u := UserRow{
			Row:      i + 1,
			Email:    strings.TrimSpace(row[0]),
			Password: strings.TrimSpace(row[1]),
			Name:     strings.TrimSpace(row[2]),
			Role:     entity.RoleUser,
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			u.Role = entity.Role(strings.ToLower(strings.TrimSpace(row[3])))
		}

		if u.Email == "" || u.Password == "" || u.Name == "" || !emailRegex.MatchString(u.Email) || !u.Role.Valid() {
			invalid = append(invalid, u.Row)
			continue
		}

		if _, dup := seen[u.Email]; dup {
			invalid = append(invalid, u.Row)
			continue
		}
		seen[u.Email] = struct{}{}

		users = append(users, u)
	}

	return users, invalid, nil
}

// UsersTemplate writes an empty import workbook with the expected header.
func UsersTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Users"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}

	header := make([]interface{}, len(importHeaders))
	for i, h := range importHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err := f.SetColWidth(sheet, "A", "D", 24); err != nil {
		return errors.Wrap(err, "setting column width")
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
