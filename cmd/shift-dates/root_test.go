package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mmdatafocus/studio_backend/models"
	"github.com/mmdatafocus/studio_backend/notify"
	"github.com/mmdatafocus/studio_backend/store"
	"github.com/mmdatafocus/studio_backend/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "5b4a3928-1706-4f5e-9d8c-7b6a59483726"

type capturePublisher struct{ events []notify.Event }

func (c *capturePublisher) Publish(_ context.Context, e notify.Event) error {
	c.events = append(c.events, e)
	return nil
}

type fakeRuntime struct {
	mem       *store.MemoryStore
	published *capturePublisher
	locked    []string
	released  int
	lockErr   error
}

func newFakeRuntime() *fakeRuntime {
	created := time.Date(2025, time.November, 10, 8, 0, 0, 0, time.UTC)
	return &fakeRuntime{
		mem: store.NewMemoryStore(store.MemoryData{
			Users:     []models.User{{ID: userID, Email: "demo@example.com"}},
			Materials: []models.MaterialAndSupply{{ID: "mat-1", UserId: userID, CreatedAt: created, UpdatedAt: created}},
		}),
		published: &capturePublisher{},
	}
}

func (f *fakeRuntime) runtime() runtime {
	logger, _ := test.NewNullLogger()
	return runtime{
		logger: logger,
		openStore: func(context.Context) (store.Store, func(), error) {
			return f.mem, func() {}, nil
		},
		lockUser: func(_ context.Context, id string) (func(), error) {
			if f.lockErr != nil {
				return nil, f.lockErr
			}
			f.locked = append(f.locked, id)
			return func() { f.released++ }, nil
		},
		publisher: func(context.Context, *logrus.Logger) notify.Publisher { return f.published },
	}
}

func execute(t *testing.T, f *fakeRuntime, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(f.runtime())
	cmd.SetOut(&stdout)
	code := utils.ExecuteCLI(cmd, args, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestShiftDates(t *testing.T) {
	t.Setenv("SHIFT_TIMEZONE", "UTC")
	f := newFakeRuntime()

	code, stdout, stderr := execute(t, f, "--", "--userId="+userID, "--sourceMonth=2025-11", "--targetMonth=2025-06")
	require.Equal(t, 0, code, stderr)

	var out struct {
		Command       string `json:"command"`
		CorrelationID string `json:"correlationId"`
		Result        struct {
			Total  int `json:"total"`
			Tables []struct {
				Table   string `json:"table"`
				Updated int    `json:"updated"`
			} `json:"tables"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, toolName, out.Command)
	assert.NotEmpty(t, out.CorrelationID)
	assert.Equal(t, 1, out.Result.Total)
	assert.Len(t, out.Result.Tables, len(models.UserOwnedTables))

	mat := f.mem.Data().Materials[0]
	assert.True(t, time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC).Equal(mat.CreatedAt))

	assert.Equal(t, []string{userID}, f.locked)
	assert.Equal(t, 1, f.released)
	require.Len(t, f.published.events, 1)
	assert.Equal(t, notify.EventDatesShifted, f.published.events[0].Type)
	assert.Equal(t, out.CorrelationID, f.published.events[0].CorrelationID)
}

func TestShiftDates_DryRunSkipsLock(t *testing.T) {
	t.Setenv("SHIFT_TIMEZONE", "UTC")
	f := newFakeRuntime()

	code, _, stderr := execute(t, f, "--userId", userID, "--sourceMonth", "2025-11", "--targetMonth", "2025-06", "--dry-run")
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, f.locked)
	assert.Empty(t, f.mem.Updates())
	require.Len(t, f.published.events, 1)
	assert.True(t, f.published.events[0].DryRun)
}

func TestShiftDates_InvalidFlags(t *testing.T) {
	cases := map[string][]string{
		"missing user":    {"--sourceMonth=2025-11", "--targetMonth=2025-06"},
		"missing target":  {"--userId=" + userID, "--sourceMonth=2025-11"},
		"bad user":        {"--userId=42", "--sourceMonth=2025-11", "--targetMonth=2025-06"},
		"bad month":       {"--userId=" + userID, "--sourceMonth=2025-1", "--targetMonth=2025-06"},
		"bad ratio scope": {"--userId=" + userID, "--sourceMonth=2025-11", "--targetMonth=2025-06", "--ratio-scope=some"},
		"bad timezone":    {"--userId=" + userID, "--sourceMonth=2025-11", "--targetMonth=2025-06", "--timezone=Mars/Base"},
		"positional arg":  {"--userId=" + userID, "--sourceMonth=2025-11", "--targetMonth=2025-06", "extra"},
		"unknown flag":    {"--userId=" + userID, "--sourceMonth=2025-11", "--targetMonth=2025-06", "--force"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFakeRuntime()
			code, stdout, stderr := execute(t, f, args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.NotEmpty(t, stderr)
			assert.Empty(t, f.mem.Updates())
			assert.Empty(t, f.published.events)
		})
	}
}

func TestShiftDates_ValidationMessage(t *testing.T) {
	f := newFakeRuntime()
	code, _, stderr := execute(t, f, "--sourceMonth=2025-11", "--targetMonth=2025-06")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error (validation)")
	assert.Contains(t, stderr, "--userId is required")
}

func TestShiftDates_UnknownUser(t *testing.T) {
	f := newFakeRuntime()
	code, _, stderr := execute(t, f, "--userId=1f2e3d4c-5b6a-4798-8a7b-6c5d4e3f2a1b", "--sourceMonth=2025-11", "--targetMonth=2025-06")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error (not_found)")
	assert.Equal(t, 1, f.released)
}

func TestShiftDates_LockHeld(t *testing.T) {
	f := newFakeRuntime()
	f.lockErr = errors.Wrap(utils.ErrUserLocked, "shift-dates:"+userID)

	code, _, stderr := execute(t, f, "--userId="+userID, "--sourceMonth=2025-11", "--targetMonth=2025-06")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "another maintenance run")
	assert.Empty(t, f.mem.Updates())
}
