package dateshift

import (
	"time"

	"github.com/mmdatafocus/studio_backend/models"
	"github.com/mmdatafocus/studio_backend/store"
	"github.com/mmdatafocus/studio_backend/utils"
	"gorm.io/datatypes"
)

// candidate is one row that may need new dates. shift is pure: it returns the
// columns to write and whether any of them moved.
type candidate struct {
	id    string
	shift func(source utils.Month, target utils.Month) (store.Fields, bool)
}

type fieldKind int

const (
	kindTimestamp fieldKind = iota
	kindDate
)

// dateField is one shiftable column value, already in the wall-clock location.
type dateField struct {
	column string
	value  time.Time
	kind   fieldKind
}

func timestamp(column string, t time.Time, loc *time.Location) dateField {
	return dateField{column: column, value: t.In(loc), kind: kindTimestamp}
}

// calendarDate reads a date column by its calendar day; shifting the instant into
// loc could move it to the previous day.
func calendarDate(column string, d datatypes.Date, loc *time.Location) dateField {
	t := time.Time(d)
	return dateField{column: column, value: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), kind: kindDate}
}

func inLocation(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	local := t.In(loc)
	return &local
}

// shiftFields shifts every field in source. All fields are returned so one update
// rewrites the whole set; changed reports whether any value moved.
func shiftFields(fields []dateField, source utils.Month, target utils.Month) (store.Fields, bool) {
	out := make(store.Fields, len(fields))
	changed := false
	for _, f := range fields {
		cur := f.value
		next := utils.ShiftDateIfInMonth(&cur, source, target)
		if !next.Equal(cur) {
			changed = true
		}
		if f.kind == kindDate {
			out[f.column] = datatypes.Date(*next)
		} else {
			out[f.column] = *next
		}
	}
	return out, changed
}

func rowCandidate(id string, fields ...dateField) candidate {
	return candidate{
		id: id,
		shift: func(source utils.Month, target utils.Month) (store.Fields, bool) {
			return shiftFields(fields, source, target)
		},
	}
}

func timestampsCandidate(id string, createdAt time.Time, updatedAt time.Time, loc *time.Location) candidate {
	return rowCandidate(id,
		timestamp(models.ColumnCreatedAt, createdAt, loc),
		timestamp(models.ColumnUpdatedAt, updatedAt, loc),
	)
}
