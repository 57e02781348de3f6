package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colorslide/model"
)

func TestShouldRunInterval(t *testing.T) {
	sc := model.Schedule{ID: "prune", Enabled: true, Type: model.ScheduleInterval, Every: "1h"}
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, shouldRun(sc, time.Time{}, now))
	assert.False(t, shouldRun(sc, now.Add(-30*time.Minute), now))
	assert.True(t, shouldRun(sc, now.Add(-time.Hour), now))

	sc.Every = "soon"
	assert.False(t, shouldRun(sc, time.Time{}, now))
	sc.Every = "-1h"
	assert.False(t, shouldRun(sc, time.Time{}, now))
	sc.Every = ""
	assert.False(t, shouldRun(sc, time.Time{}, now))
}

func TestShouldRunDaily(t *testing.T) {
	sc := model.Schedule{ID: "prune", Enabled: true, Type: model.ScheduleDaily, TimeOfDay: "03:30"}
	morning := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)
	after := time.Date(2026, 5, 1, 4, 0, 0, 0, time.UTC)

	assert.False(t, shouldRun(sc, time.Time{}, morning))
	assert.True(t, shouldRun(sc, time.Time{}, after))
	assert.False(t, shouldRun(sc, after.Add(-10*time.Minute), after), "already ran today")
	assert.True(t, shouldRun(sc, after.Add(-24*time.Hour), after))

	for _, bad := range []string{"", "3", "25:00", "03:61", "aa:bb", "1:2:3"} {
		sc.TimeOfDay = bad
		assert.False(t, shouldRun(sc, time.Time{}, after), bad)
	}

	assert.False(t, shouldRun(model.Schedule{Type: "weekly"}, time.Time{}, after))
}

func TestCheckRunsDueTasks(t *testing.T) {
	var ran, other atomic.Int32
	done := make(chan struct{}, 4)
	tasks := map[string]Task{
		"prune": func(ctx context.Context) error {
			ran.Add(1)
			done <- struct{}{}
			return nil
		},
		"disabled": func(ctx context.Context) error {
			other.Add(1)
			return nil
		},
	}
	scheds := []model.Schedule{
		{ID: "prune", Enabled: true, Type: model.ScheduleInterval, Every: "1h"},
		{ID: "disabled", Enabled: false, Type: model.ScheduleInterval, Every: "1h"},
		{ID: "no-task", Enabled: true, Type: model.ScheduleInterval, Every: "1h"},
	}
	s := New(tasks, scheds, nil)
	updated := make(chan struct{}, 1)
	s.SetOnUpdate(func() { updated <- struct{}{} })

	now := time.Now()
	s.check(context.Background(), now)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("update callback not called")
	}
	assert.Equal(t, int32(1), ran.Load())
	assert.Zero(t, other.Load())
	assert.True(t, s.LastRun()["prune"].Equal(now))

	// Not due again within the hour.
	s.check(context.Background(), now.Add(time.Minute))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), ran.Load())
}

func TestFailedRunKeepsLastRun(t *testing.T) {
	done := make(chan struct{})
	tasks := map[string]Task{"prune": func(ctx context.Context) error {
		defer close(done)
		return errors.New("disk full")
	}}
	prev := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(tasks, []model.Schedule{{ID: "prune", Enabled: true, Type: model.ScheduleInterval, Every: "1h"}}, map[string]time.Time{"prune": prev})

	s.check(context.Background(), prev.Add(2*time.Hour))
	<-done
	time.Sleep(10 * time.Millisecond)
	assert.True(t, s.LastRun()["prune"].Equal(prev))
}

func TestSchedulesAreCopies(t *testing.T) {
	initial := []model.Schedule{{ID: "a"}}
	s := New(nil, initial, nil)
	initial[0].ID = "changed"

	got := s.Schedules()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	got[0].ID = "x"
	assert.Equal(t, "a", s.Schedules()[0].ID)
}
