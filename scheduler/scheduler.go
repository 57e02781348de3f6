package scheduler

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"colorslide/model"
)

// Task is a unit of background work, looked up by schedule ID.
type Task func(ctx context.Context) error

type Scheduler struct {
	mu        sync.Mutex
	schedules []model.Schedule
	lastRun   map[string]time.Time
	tasks     map[string]Task
	onUpdate  func()
	interval  time.Duration
}

func New(tasks map[string]Task, initial []model.Schedule, lastRun map[string]time.Time) *Scheduler {
	s := &Scheduler{
		schedules: append([]model.Schedule(nil), initial...),
		lastRun:   make(map[string]time.Time, len(lastRun)),
		tasks:     tasks,
		interval:  30 * time.Second,
	}
	for k, v := range lastRun {
		s.lastRun[k] = v
	}
	return s
}

// SetOnUpdate registers a callback invoked after every successful run.
func (s *Scheduler) SetOnUpdate(fn func()) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		log.Println("[scheduler] started")
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.check(ctx, time.Now())
		for {
			select {
			case <-ctx.Done():
				log.Println("[scheduler] stopped")
				return
			case now := <-ticker.C:
				s.check(ctx, now)
			}
		}
	}()
}

func (s *Scheduler) check(ctx context.Context, now time.Time) {
	s.mu.Lock()
	scheds := make([]model.Schedule, len(s.schedules))
	copy(scheds, s.schedules)
	last := make(map[string]time.Time, len(s.lastRun))
	for k, v := range s.lastRun {
		last[k] = v
	}
	s.mu.Unlock()

	for _, sc := range scheds {
		if !sc.Enabled || sc.ID == "" {
			continue
		}
		task, ok := s.tasks[sc.ID]
		if !ok {
			continue
		}
		if !shouldRun(sc, last[sc.ID], now) {
			continue
		}

		go s.runOnce(ctx, sc.ID, task, now)
	}
}

func (s *Scheduler) runOnce(ctx context.Context, id string, task Task, now time.Time) {
	if err := task(ctx); err != nil {
		log.Printf("[scheduler] run %s failed: %v", id, err)
		return
	}
	s.mu.Lock()
	s.lastRun[id] = now
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate()
	}
}

func shouldRun(sc model.Schedule, lastRun time.Time, now time.Time) bool {
	switch sc.Type {
	case model.ScheduleInterval:
		if sc.Every == "" {
			return false
		}
		dur, err := time.ParseDuration(sc.Every)
		if err != nil || dur <= 0 {
			return false
		}
		if lastRun.IsZero() {
			return true
		}
		return now.Sub(lastRun) >= dur

	case model.ScheduleDaily:
		hour, min, ok := parseTimeOfDay(sc.TimeOfDay)
		if !ok {
			return false
		}

		loc := now.Location()
		target := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, loc)

		if now.Before(target) {
			return false
		}
		if !lastRun.IsZero() && sameDay(lastRun.In(loc), now) {
			return false
		}
		return true

	default:
		return false
	}
}

func parseTimeOfDay(s string) (hour, min int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err1 := strconv.Atoi(parts[0])
	min, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, false
	}
	return hour, min, true
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (s *Scheduler) Schedules() []model.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Schedule, len(s.schedules))
	copy(out, s.schedules)
	return out
}

// LastRun returns a copy of the last successful run time per schedule ID.
func (s *Scheduler) LastRun() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Time, len(s.lastRun))
	for k, v := range s.lastRun {
		out[k] = v
	}
	return out
}
