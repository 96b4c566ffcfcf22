package app

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agalitsyn/tasks/internal/model"
)

// palette decorates rendered text. The zero value renders plain text.
type palette struct {
	heading func(a ...interface{}) string
	done    func(a ...interface{}) string
	pending func(a ...interface{}) string
	failure func(a ...interface{}) string
}

func plainPalette() palette {
	return palette{}
}

func colorPalette() palette {
	return palette{
		heading: color.New(color.FgCyan, color.Bold).SprintFunc(),
		done:    color.New(color.FgGreen).SprintFunc(),
		pending: color.New(color.FgYellow).SprintFunc(),
		failure: color.New(color.FgRed).SprintFunc(),
	}
}

func paint(fn func(a ...interface{}) string, s string) string {
	if fn == nil {
		return s
	}
	return fn(s)
}

func (p palette) Heading(s string) string { return paint(p.heading, s) }
func (p palette) Failure(s string) string { return paint(p.failure, s) }

func (p palette) Status(completed bool) string {
	if completed {
		return paint(p.done, statusLabel(true))
	}
	return paint(p.pending, statusLabel(false))
}

func statusLabel(completed bool) string {
	if completed {
		return "Completed"
	}
	return "Not completed"
}

func kindLabel(k model.TaskKind) string {
	return cases.Title(language.English).String(string(k))
}

// renderEntry renders one task as a block headed by its position:
//
//	Task 0
//	Title: ...
//	Description: ...
//	Due date: ...
//	Status: ...
//	<variant fields>
func renderEntry(e model.TaskEntry, p palette) string {
	d := e.Task.Details()

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", p.Heading(fmt.Sprintf("Task %d", e.Position)), kindLabel(d.Kind))
	fmt.Fprintf(&b, "Title: %s\n", d.Title)
	fmt.Fprintf(&b, "Description: %s\n", d.Description)
	fmt.Fprintf(&b, "Due date: %s\n", d.DueDate)
	fmt.Fprintf(&b, "Status: %s\n", p.Status(d.Completed))
	for _, f := range d.Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, f.Value)
	}
	return b.String()
}

func renderEntries(entries []model.TaskEntry, p palette) string {
	if len(entries) == 0 {
		return "No tasks.\n"
	}
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, renderEntry(e, p))
	}
	return strings.Join(blocks, "\n")
}
