package model

import (
	"testing"
)

func TestTask_MarkAsCompleted_Idempotent(t *testing.T) {
	task := NewPersonalTask("Buy milk", "Get 2% milk", "20/05/2024", 3)
	before := task

	task.MarkAsCompleted()
	task.MarkAsCompleted()

	if !task.Completed {
		t.Fatal("Completed = false, want true")
	}
	before.Completed = true
	if task != before {
		t.Fatalf("MarkAsCompleted changed other fields: got %+v, want %+v", task, before)
	}
}

func TestNewTask_AssignsID(t *testing.T) {
	a := NewTask("a", "", "")
	b := NewTask("b", "", "")
	if a.ID == "" || b.ID == "" {
		t.Fatal("NewTask() did not assign an id")
	}
	if a.ID == b.ID {
		t.Fatalf("NewTask() ids collide: %s", a.ID)
	}
	if a.Kind != TaskKindGeneric {
		t.Fatalf("Kind = %s, want %s", a.Kind, TaskKindGeneric)
	}
}

func TestTask_Details(t *testing.T) {
	tests := []struct {
		name   string
		task   Task
		kind   TaskKind
		fields []TaskField
	}{
		{
			name: "generic",
			task: NewTask("Finish report", "Quarterly report", "01/06/2024"),
			kind: TaskKindGeneric,
		},
		{
			name: "personal",
			task: NewPersonalTask("Call mom", "", "02/06/2024", 7),
			kind: TaskKindPersonal,
			fields: []TaskField{
				{Name: "Urgency level", Value: "7"},
			},
		},
		{
			name: "school",
			task: NewSchoolTask("Essay", "History essay", "03/06/2024", "History", 90),
			kind: TaskKindSchool,
			fields: []TaskField{
				{Name: "Subject", Value: "History"},
				{Name: "Estimated study time", Value: "90 minutes"},
			},
		},
		{
			name: "unknown kind renders as generic",
			task: Task{Title: "x", Kind: "weird", UrgencyLevel: 4},
			kind: TaskKindGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.task.Details()
			if d.Kind != tt.kind {
				t.Fatalf("Kind = %s, want %s", d.Kind, tt.kind)
			}
			if d.Title != tt.task.Title || d.Description != tt.task.Description || d.DueDate != tt.task.DueDate {
				t.Fatalf("Details() common fields = %+v, task %+v", d, tt.task)
			}
			if d.Completed != tt.task.Completed {
				t.Fatalf("Completed = %v, want %v", d.Completed, tt.task.Completed)
			}
			if len(d.Fields) != len(tt.fields) {
				t.Fatalf("Fields = %+v, want %+v", d.Fields, tt.fields)
			}
			for i := range tt.fields {
				if d.Fields[i] != tt.fields[i] {
					t.Fatalf("Fields[%d] = %+v, want %+v", i, d.Fields[i], tt.fields[i])
				}
			}
		})
	}
}

func TestTask_NoValidation(t *testing.T) {
	task := NewSchoolTask("", "", "not a date", "", -15)
	task.UrgencyLevel = 99
	if task.StudyTime != -15 || task.Title != "" || task.DueDate != "not a date" {
		t.Fatalf("task fields were altered: %+v", task)
	}
}

func TestParseTaskKind(t *testing.T) {
	tests := map[string]TaskKind{
		"":         TaskKindGeneric,
		"generic":  TaskKindGeneric,
		"personal": TaskKindPersonal,
		"school":   TaskKindSchool,
		"PERSONAL": TaskKindGeneric,
	}
	for in, want := range tests {
		if got := ParseTaskKind(in); got != want {
			t.Errorf("ParseTaskKind(%q) = %s, want %s", in, got, want)
		}
	}
}
