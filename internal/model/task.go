package model

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// DueDateLayout is the layout shells ask the user for. Due dates are stored
// as entered and never parsed by the model.
const DueDateLayout = "DD/MM/YYYY"

type TaskKind string

const (
	TaskKindGeneric  TaskKind = "generic"
	TaskKindPersonal TaskKind = "personal"
	TaskKindSchool   TaskKind = "school"
)

func (k TaskKind) Valid() bool {
	switch k {
	case TaskKindGeneric, TaskKindPersonal, TaskKindSchool:
		return true
	default:
		return false
	}
}

// ParseTaskKind maps an empty or unknown value to TaskKindGeneric.
func ParseTaskKind(s string) TaskKind {
	k := TaskKind(s)
	if !k.Valid() {
		return TaskKindGeneric
	}
	return k
}

// Task is a tagged union over Kind. UrgencyLevel is meaningful for personal
// tasks only, Subject and StudyTime for school tasks only.
type Task struct {
	ID          string
	Kind        TaskKind
	Title       string
	Description string
	DueDate     string
	Completed   bool

	UrgencyLevel int

	Subject   string
	StudyTime int // minutes
}

func NewTask(title, description, dueDate string) Task {
	return Task{
		ID:          NewTaskID(),
		Kind:        TaskKindGeneric,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
	}
}

func NewPersonalTask(title, description, dueDate string, urgencyLevel int) Task {
	t := NewTask(title, description, dueDate)
	t.Kind = TaskKindPersonal
	t.UrgencyLevel = urgencyLevel
	return t
}

func NewSchoolTask(title, description, dueDate, subject string, studyTime int) Task {
	t := NewTask(title, description, dueDate)
	t.Kind = TaskKindSchool
	t.Subject = subject
	t.StudyTime = studyTime
	return t
}

func NewTaskID() string {
	return uuid.NewString()
}

// MarkAsCompleted is idempotent.
func (t *Task) MarkAsCompleted() {
	t.Completed = true
}

type TaskField struct {
	Name  string
	Value string
}

type TaskDetails struct {
	Kind        TaskKind
	Title       string
	Description string
	DueDate     string
	Completed   bool
	Fields      []TaskField
}

// Details returns the common fields followed by the variant fields of the
// task's kind, in display order.
func (t Task) Details() TaskDetails {
	d := TaskDetails{
		Kind:        ParseTaskKind(string(t.Kind)),
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
	}
	switch d.Kind {
	case TaskKindPersonal:
		d.Fields = []TaskField{
			{Name: "Urgency level", Value: strconv.Itoa(t.UrgencyLevel)},
		}
	case TaskKindSchool:
		d.Fields = []TaskField{
			{Name: "Subject", Value: t.Subject},
			{Name: "Estimated study time", Value: fmt.Sprintf("%d minutes", t.StudyTime)},
		}
	}
	return d
}

// TaskEntry is a task tagged with its position in the collection at the
// moment the listing was built.
type TaskEntry struct {
	Position int
	Task     Task
}

type TaskRepository interface {
	LoadTasks(ctx context.Context) ([]Task, error)
	SaveTasks(ctx context.Context, tasks []Task) error
}
