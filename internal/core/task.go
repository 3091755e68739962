package core

import (
	"fmt"
	"sort"
	"strings"
)

// Task is a single pick or place action at a named station.
type Task struct {
	Station string   // Station id, resolved through the station lookup
	Objects []string // Object ids; the first one keys the pick/place pair
	Name    string   // Free text; "pick" anywhere (any case) makes it a pick
	Points  int      // Awarded on success, never negative
}

// NewTask creates a task with an explicit point value.
func NewTask(station string, objects []string, name string, points int) (*Task, error) {
	if points < 0 {
		return nil, fmt.Errorf("task %q: %w: %d", name, ErrInvalidPoints, points)
	}
	return &Task{
		Station: station,
		Objects: append([]string(nil), objects...),
		Name:    name,
		Points:  points,
	}, nil
}

// NewTaskAutoPoints creates a task whose points come from the scoring context.
func NewTaskAutoPoints(station string, objects []string, name string, sc *ScoringContext) *Task {
	t := &Task{
		Station: station,
		Objects: append([]string(nil), objects...),
		Name:    name,
	}
	t.Points = sc.CalculatePoints(t)
	return t
}

// Kind classifies the task by name.
func (t *Task) Kind() Kind {
	if strings.Contains(strings.ToLower(t.Name), "pick") {
		return KindPick
	}
	return KindPlace
}

// IsPick is shorthand for Kind() == KindPick.
func (t *Task) IsPick() bool {
	return t.Kind() == KindPick
}

// Key returns the pairing key (first object id), or "" if there are no objects.
func (t *Task) Key() string {
	if len(t.Objects) == 0 {
		return ""
	}
	return t.Objects[0]
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(station=%s, objects=%v, name=%q, points=%d)", t.Station, t.Objects, t.Name, t.Points)
}

// SortByPoints orders tasks by points in place. The sort is stable, so tasks
// with equal points keep their table order.
func SortByPoints(tasks []*Task, descending bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if descending {
			return tasks[i].Points > tasks[j].Points
		}
		return tasks[i].Points < tasks[j].Points
	})
}

// TaskPair holds the pick and place halves for one object.
type TaskPair struct {
	Object string
	Pick   *Task
	Place  *Task
}
