package dateshift

import (
	"time"

	"github.com/mmdatafocus/studio_backend/models"
	"github.com/mmdatafocus/studio_backend/store"
	"github.com/mmdatafocus/studio_backend/utils"
)

// ExpenseDates are the date columns of an overhead or operational expense.
type ExpenseDates struct {
	CreatedAt time.Time
	StartDate *time.Time
	DueDate   *time.Time
}

// ShiftExpense moves CreatedAt when it falls in source. StartDate and DueDate are never
// matched against source: when CreatedAt moves they keep their whole-day offset from it,
// otherwise they stay as stored.
func ShiftExpense(e ExpenseDates, source utils.Month, target utils.Month) (ExpenseDates, bool) {
	original := e.CreatedAt
	shifted := utils.ShiftDateIfInMonth(&original, source, target)
	if shifted == nil || shifted.Equal(original) {
		return e, false
	}

	out := ExpenseDates{CreatedAt: *shifted, StartDate: e.StartDate, DueDate: e.DueDate}
	if e.StartDate != nil {
		next := utils.AddDays(*shifted, utils.GetDateOffset(original, *e.StartDate))
		out.StartDate = &next
	}
	if e.DueDate != nil {
		next := utils.AddDays(*shifted, utils.GetDateOffset(original, *e.DueDate))
		out.DueDate = &next
	}
	return out, true
}

func expenseCandidate(id string, e ExpenseDates, loc *time.Location) candidate {
	local := ExpenseDates{
		CreatedAt: e.CreatedAt.In(loc),
		StartDate: inLocation(e.StartDate, loc),
		DueDate:   inLocation(e.DueDate, loc),
	}
	return candidate{
		id: id,
		shift: func(source utils.Month, target utils.Month) (store.Fields, bool) {
			next, changed := ShiftExpense(local, source, target)
			if !changed {
				return nil, false
			}
			return store.Fields{
				models.ColumnCreatedAt: next.CreatedAt,
				models.ColumnStartDate: next.StartDate,
				models.ColumnDueDate:   next.DueDate,
			}, true
		},
	}
}
