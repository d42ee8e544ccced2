package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	RatioScopeUser = "user"
	RatioScopeAll  = "all"
)

// ShiftAtomic runs a whole shift inside one transaction.
//
// Set via env:
// - SHIFT_ATOMIC=false to commit table by table
func ShiftAtomic() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SHIFT_ATOMIC")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// RatioScope controls which material output ratios are candidates for a user.
// "user" follows goods -> junction -> ratios; "all" scans the whole table once the user owns a good.
//
// Set via env:
// - SHIFT_RATIO_SCOPE=user|all
func RatioScope() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SHIFT_RATIO_SCOPE")))
	if v == RatioScopeAll {
		return RatioScopeAll
	}
	return RatioScopeUser
}

// ShiftLocation is the wall-clock zone month membership is evaluated in.
//
// Set via env:
// - SHIFT_TIMEZONE=Asia/Yangon (default: process local zone)
func ShiftLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(os.Getenv("SHIFT_TIMEZONE"))
	}
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", name)
	}
	return loc, nil
}
