package model

import (
	"errors"
	"slices"
)

var (
	ErrInvalidIndex = errors.New("task id is not valid")
	ErrTaskNotFound = errors.New("task not found")
)

// User exclusively owns an ordered collection of tasks. Positions are
// zero-based indexes into the current order and shift on removal; use the
// ByID operations when a reference has to survive other mutations.
type User struct {
	username string
	tasks    []Task
}

func NewUser(username string) *User {
	return &User{username: username}
}

func (u *User) Username() string {
	return u.username
}

func (u *User) SetUsername(username string) {
	u.username = username
}

func (u *User) Len() int {
	return len(u.tasks)
}

// AddTask appends the task and returns its position. A task without an ID,
// or with one already in the collection, gets a new ID.
func (u *User) AddTask(task Task) int {
	if _, err := u.Position(task.ID); task.ID == "" || err == nil {
		task.ID = NewTaskID()
	}
	if !task.Kind.Valid() {
		task.Kind = TaskKindGeneric
	}
	u.tasks = append(u.tasks, task)
	return len(u.tasks) - 1
}

func (u *User) Task(pos int) (Task, error) {
	if !u.validPosition(pos) {
		return Task{}, ErrInvalidIndex
	}
	return u.tasks[pos], nil
}

// RemoveTask removes the task at pos and returns it. Later tasks move down by one.
func (u *User) RemoveTask(pos int) (Task, error) {
	if !u.validPosition(pos) {
		return Task{}, ErrInvalidIndex
	}
	removed := u.tasks[pos]
	u.tasks = slices.Delete(u.tasks, pos, pos+1)
	return removed, nil
}

func (u *User) MarkTaskAsCompleted(pos int) (Task, error) {
	if !u.validPosition(pos) {
		return Task{}, ErrInvalidIndex
	}
	u.tasks[pos].MarkAsCompleted()
	return u.tasks[pos], nil
}

func (u *User) Position(id string) (int, error) {
	for i := range u.tasks {
		if u.tasks[i].ID == id {
			return i, nil
		}
	}
	return -1, ErrTaskNotFound
}

func (u *User) RemoveTaskByID(id string) (Task, error) {
	pos, err := u.Position(id)
	if err != nil {
		return Task{}, err
	}
	return u.RemoveTask(pos)
}

func (u *User) MarkTaskAsCompletedByID(id string) (Task, error) {
	pos, err := u.Position(id)
	if err != nil {
		return Task{}, err
	}
	return u.MarkTaskAsCompleted(pos)
}

func (u *User) AllTasks() []TaskEntry {
	entries := make([]TaskEntry, 0, len(u.tasks))
	for i, t := range u.tasks {
		entries = append(entries, TaskEntry{Position: i, Task: t})
	}
	return entries
}

// TasksByStatus keeps the original positions of the matching tasks.
func (u *User) TasksByStatus(completed bool) []TaskEntry {
	var entries []TaskEntry
	for i, t := range u.tasks {
		if t.Completed == completed {
			entries = append(entries, TaskEntry{Position: i, Task: t})
		}
	}
	return entries
}

// Tasks returns a copy of the owned collection.
func (u *User) Tasks() []Task {
	return slices.Clone(u.tasks)
}

// SetTasks replaces the owned collection with a copy of tasks.
func (u *User) SetTasks(tasks []Task) {
	u.tasks = make([]Task, 0, len(tasks))
	for _, t := range tasks {
		u.AddTask(t)
	}
}

func (u *User) validPosition(pos int) bool {
	return pos >= 0 && pos < len(u.tasks)
}
