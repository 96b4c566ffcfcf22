package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/tasks/internal/model"
	"github.com/agalitsyn/tasks/internal/service"
)

const (
	choiceAdd = iota + 1
	choiceRemove
	choiceViewAll
	choiceComplete
	choiceByStatus
	choiceExit
)

type ConsoleConfig struct {
	Color bool
}

// Console is the interactive menu loop. It reads one answer per line and
// never touches the collection directly.
type Console struct {
	cfg    ConsoleConfig
	svc    *service.TaskService
	in     *bufio.Scanner
	out    io.Writer
	pal    palette
	logger lgr.L
}

func NewConsole(cfg ConsoleConfig, svc *service.TaskService, in io.Reader, out io.Writer, logger lgr.L) *Console {
	if logger == nil {
		logger = lgr.NoOp
	}
	pal := plainPalette()
	if cfg.Color {
		pal = colorPalette()
	}
	return &Console{
		cfg:    cfg,
		svc:    svc,
		in:     bufio.NewScanner(in),
		out:    out,
		pal:    pal,
		logger: logger,
	}
}

// Run serves the menu until the user exits, input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			c.logger.Logf("[DEBUG] console stopped: %v", err)
			return nil
		}

		c.printMenu()
		answer, err := c.readLine()
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not read choice: %w", err)
		}

		choice, err := strconv.Atoi(answer)
		if err != nil {
			c.println(c.pal.Failure("Invalid choice."))
			continue
		}

		switch choice {
		case choiceAdd:
			err = c.addTask(ctx)
		case choiceRemove:
			err = c.removeTask(ctx)
		case choiceViewAll:
			c.println(c.pal.Heading("=== View all tasks ==="))
			c.print(renderEntries(c.svc.AllTasks(), c.pal))
		case choiceComplete:
			err = c.completeTask(ctx)
		case choiceByStatus:
			err = c.tasksByStatus()
		case choiceExit:
			c.println(c.pal.Heading("=== EXIT ==="))
			c.println("You just exited Task Manager")
			return nil
		default:
			c.println(c.pal.Failure("Invalid choice."))
		}
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		c.println("")
	}
}

func (c *Console) printMenu() {
	c.println(c.pal.Heading("===== TASK MANAGER ====="))
	c.println("1. Add a task")
	c.println("2. Remove a task")
	c.println("3. View all tasks")
	c.println("4. Mark a task as completed")
	c.println("5. Display tasks by status")
	c.println("6. Exit")
	c.println("Enter your choice:")
}

func (c *Console) addTask(ctx context.Context) error {
	c.println(c.pal.Heading("=== Add a task ==="))

	title, err := c.ask("Task title:")
	if err != nil {
		return err
	}
	description, err := c.ask("Task description:")
	if err != nil {
		return err
	}
	dueDate, err := c.ask(fmt.Sprintf("Task deadline (%s):", model.DueDateLayout))
	if err != nil {
		return err
	}
	kind, err := c.ask("Generic(0), personal(1) or school related task(2):")
	if err != nil {
		return err
	}

	if title == "" {
		c.println(c.pal.Failure("Failed to add the task. Title is required."))
		return nil
	}

	var task model.Task
	switch kind {
	case "0", "":
		task = model.NewTask(title, description, dueDate)
	case "1":
		urgency, ok, err := c.askInt("Urgency level 1 (not important) - 10 (very important):")
		if err != nil || !ok {
			return err
		}
		task = model.NewPersonalTask(title, description, dueDate, urgency)
	case "2":
		subject, err := c.ask("Subject:")
		if err != nil {
			return err
		}
		studyTime, ok, err := c.askInt("Estimated study time in minutes:")
		if err != nil || !ok {
			return err
		}
		task = model.NewSchoolTask(title, description, dueDate, subject, studyTime)
	default:
		c.println(c.pal.Failure("Failed to add the task. Invalid type."))
		return nil
	}

	entry, err := c.svc.AddTask(ctx, task)
	if c.reportSaveErr(err) {
		return nil
	}
	c.println(fmt.Sprintf("Task added as task %d.", entry.Position))
	return nil
}

func (c *Console) removeTask(ctx context.Context) error {
	c.println(c.pal.Heading("=== Remove a task ==="))
	c.print(renderEntries(c.svc.AllTasks(), c.pal))

	pos, ok, err := c.askInt("Task ID:")
	if err != nil || !ok {
		return err
	}

	_, err = c.svc.RemoveTask(ctx, pos)
	if errors.Is(err, model.ErrInvalidIndex) {
		c.println(c.pal.Failure("Task ID is not valid. Failed to remove the task."))
		return nil
	}
	if c.reportSaveErr(err) {
		return nil
	}
	c.println("Task has been removed successfully.")
	return nil
}

func (c *Console) completeTask(ctx context.Context) error {
	c.println(c.pal.Heading("=== Mark a task as completed ==="))
	c.print(renderEntries(c.svc.AllTasks(), c.pal))

	pos, ok, err := c.askInt("Task ID:")
	if err != nil || !ok {
		return err
	}

	_, err = c.svc.CompleteTask(ctx, pos)
	if errors.Is(err, model.ErrInvalidIndex) {
		c.println(c.pal.Failure("Task ID is not valid. Failed to mark the task as completed."))
		return nil
	}
	if c.reportSaveErr(err) {
		return nil
	}
	c.println("Task has been marked as completed.")
	return nil
}

func (c *Console) tasksByStatus() error {
	c.println(c.pal.Heading("=== Display tasks by status ==="))
	answer, err := c.ask("Display completed tasks (1) or incomplete tasks (0):")
	if err != nil {
		return err
	}

	var completed bool
	switch answer {
	case "1":
		completed = true
	case "0":
		completed = false
	default:
		c.println(c.pal.Failure("Invalid status."))
		return nil
	}

	c.println(c.pal.Status(completed))
	c.print(renderEntries(c.svc.TasksByStatus(completed), c.pal))
	return nil
}

// reportSaveErr prints a failed save and reports whether err was non-nil.
// The in-memory change has already been applied at that point.
func (c *Console) reportSaveErr(err error) bool {
	if err == nil {
		return false
	}
	c.logger.Logf("[WARN] %v", err)
	c.println(c.pal.Failure(fmt.Sprintf("The change was applied but not saved: %v", err)))
	return true
}

func (c *Console) ask(question string) (string, error) {
	c.println(question)
	return c.readLine()
}

// askInt reports ok=false after telling the user the answer was not a number.
func (c *Console) askInt(question string) (int, bool, error) {
	answer, err := c.ask(question)
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		c.println(c.pal.Failure(fmt.Sprintf("%q is not a number.", answer)))
		return 0, false, nil
	}
	return n, true, nil
}

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) print(s string) {
	fmt.Fprint(c.out, s)
}
