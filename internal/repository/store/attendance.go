package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"attendance/tracker/internal/entity"
)

// CreateAttendanceRecord opens a work period. It does not check for an
// already open record; the attendance service does.
func (s *Store) CreateAttendanceRecord(ctx context.Context, userID string, loginTime time.Time, lat, lng float64) (entity.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := entity.AttendanceRecord{
		ID:               s.newID(),
		UserID:           userID,
		LoginTime:        loginTime,
		LoginLocationLat: lat,
		LoginLocationLng: lng,
		CreatedAt:        s.now(),
	}

	records := append(append([]entity.AttendanceRecord(nil), s.records...), record)
	if err := s.saveRecords(ctx, records); err != nil {
		return entity.AttendanceRecord{}, err
	}

	return record.Clone(), nil
}

// UpdateAttendanceLogout closes the record. It reports false when no record
// has this id.
func (s *Store) UpdateAttendanceLogout(ctx context.Context, recordID string, logoutTime time.Time, lat, lng, totalHours float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := -1
	for j, r := range s.records {
		if r.ID == recordID {
			i = j
			break
		}
	}
	if i < 0 {
		return false, nil
	}

	record := s.records[i].Clone()
	record.LogoutTime = &logoutTime
	record.LogoutLocationLat = &lat
	record.LogoutLocationLng = &lng
	record.TotalHours = &totalHours

	records := append([]entity.AttendanceRecord(nil), s.records...)
	records[i] = record

	if err := s.saveRecords(ctx, records); err != nil {
		return false, err
	}

	return true, nil
}

// GetAttendanceRecords returns the records of userID, or every record when
// userID is empty, latest login first.
func (s *Store) GetAttendanceRecords(userID string) []entity.AttendanceRecord {
	s.mu.RLock()
	out := make([]entity.AttendanceRecord, 0, len(s.records))
	for _, r := range s.records {
		if userID == "" || r.UserID == userID {
			out = append(out, r.Clone())
		}
	}
	s.mu.RUnlock()

	sortByLogin(out, func(i int) time.Time { return out[i].LoginTime })

	return out
}

// GetActiveAttendanceRecord returns the most recent open record of userID.
func (s *Store) GetActiveAttendanceRecord(userID string) (entity.AttendanceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		active entity.AttendanceRecord
		found  bool
	)
	for _, r := range s.records {
		if r.UserID != userID || !r.Open() {
			continue
		}
		if !found || r.LoginTime.After(active.LoginTime) {
			active, found = r, true
		}
	}

	if !found {
		return entity.AttendanceRecord{}, false
	}
	return active.Clone(), true
}

// GetAttendanceWithUserDetails joins every record with its user, latest
// login first. Records of deleted users get placeholder identity.
func (s *Store) GetAttendanceWithUserDetails() []entity.AttendanceWithUser {
	s.mu.RLock()
	byID := make(map[string]entity.User, len(s.users))
	for _, u := range s.users {
		byID[u.ID] = u
	}

	out := make([]entity.AttendanceWithUser, 0, len(s.records))
	for _, r := range s.records {
		row := entity.AttendanceWithUser{
			AttendanceRecord: r.Clone(),
			UserName:         UnknownUserName,
			UserEmail:        UnknownUserEmail,
		}
		if u, ok := byID[r.UserID]; ok {
			row.UserName = u.Name
			row.UserEmail = u.Email
		}
		out = append(out, row)
	}
	s.mu.RUnlock()

	sortByLogin(out, func(i int) time.Time { return out[i].LoginTime })

	return out
}

// SearchAttendance filters the joined list and pages it. The returned count
// is the number of matches before paging.
func (s *Store) SearchAttendance(filter AttendanceFilter) ([]entity.AttendanceWithUser, int) {
	rows := s.GetAttendanceWithUserDetails()

	var term string
	if filter.Search != nil {
		term = strings.ToLower(strings.TrimSpace(*filter.Search))
	}

	list := rows[:0]
	for _, r := range rows {
		if term != "" && !matches(term, r.UserName, r.UserEmail) {
			continue
		}
		if filter.UserID != nil && *filter.UserID != "" && r.UserID != *filter.UserID {
			continue
		}
		if filter.Date != nil {
			y, m, d := r.LoginTime.Date()
			if y != filter.Date.Year() || m != filter.Date.Month() || d != filter.Date.Day() {
				continue
			}
		}
		list = append(list, r)
	}

	count := len(list)

	if filter.Page != nil && filter.Limit != nil && *filter.Page > 0 {
		offset := (*filter.Page - 1) * (*filter.Limit)
		filter.Offset = &offset
	}
	if filter.Offset != nil && *filter.Offset > 0 {
		if *filter.Offset >= len(list) {
			list = list[:0]
		} else {
			list = list[*filter.Offset:]
		}
	}
	if filter.Limit != nil && *filter.Limit > 0 && *filter.Limit < len(list) {
		list = list[:*filter.Limit]
	}

	return list, count
}

func sortByLogin[T any](rows []T, login func(i int) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		return login(i).After(login(j))
	})
}
