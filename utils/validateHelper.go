package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/studio_backend/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// UserFinder resolves a user row; it returns ErrorRecordNotFound (or a wrap of it) when missing.
type UserFinder interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

func ValidateUserID(userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return NewValidationError("userId", userID, "expected a uuid")
	}
	return nil
}

// ValidateUserExists fails with NotFoundError when the user is missing and logs
// the resolved email so the operator can confirm the target.
func ValidateUserExists(ctx context.Context, finder UserFinder, logger *logrus.Logger, userID string) (*models.User, error) {
	user, err := finder.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrorRecordNotFound) {
			return nil, NewNotFoundError("user", userID)
		}
		return nil, err
	}
	if user == nil {
		return nil, NewNotFoundError("user", userID)
	}
	if logger != nil {
		logger.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("target user found")
	}
	return user, nil
}

func ValidateMonthFormat(month string) error {
	if !IsValidMonthFormat(month) {
		return NewValidationError("month", month, "expected format YYYY-MM")
	}
	return nil
}

// IsMonthInPast reports whether month starts strictly before the month containing now.
// Malformed months are never in the past.
func IsMonthInPast(month string, now time.Time) bool {
	m, err := ParseMonth(month)
	if err != nil {
		return false
	}
	return m.Start(now.Location()).Before(MonthOf(now).Start(now.Location()))
}

func ValidateMonth(month string, mustBeInPast bool, now time.Time) error {
	if err := ValidateMonthFormat(month); err != nil {
		return err
	}
	if mustBeInPast && !IsMonthInPast(month, now) {
		return NewValidationError("month", month,
			fmt.Sprintf("month %s must be in the past (current month is %s)", month, MonthOf(now)))
	}
	return nil
}
