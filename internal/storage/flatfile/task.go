package flatfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"

	"github.com/agalitsyn/tasks/internal/model"
)

var (
	ErrNoPath          = errors.New("no file path configured")
	ErrFileUnavailable = errors.New("file unavailable")
	ErrMalformedRecord = errors.New("malformed record")
)

// Column order. The first four columns are the legacy format, the rest are
// optional on read.
const (
	colTitle = iota
	colDescription
	colDueDate
	colCompleted
	colKind
	colUrgencyLevel
	colSubject
	colStudyTime
	colID

	numColumns
	numRequiredColumns = colKind
)

const (
	filePerm    = 0o644
	maxLineSize = 1 << 20
)

// TaskStorage keeps the task collection in a comma-delimited text file,
// one task per line. Fields are quoted when they contain a delimiter, a
// quote or a line break.
type TaskStorage struct {
	path   string
	logger lgr.L
}

func NewTaskStorage(path string, logger lgr.L) *TaskStorage {
	if logger == nil {
		logger = lgr.NoOp
	}
	return &TaskStorage{path: path, logger: logger}
}

func (s *TaskStorage) Path() string {
	return s.path
}

// SaveTasks overwrites the file with tasks. The new content is written to a
// temporary file next to the target and renamed over it.
func (s *TaskStorage) SaveTasks(ctx context.Context, tasks []model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.path == "" {
		return ErrNoPath
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, t := range tasks {
		if err := w.Write(encodeRecord(t)); err != nil {
			return fmt.Errorf("could not encode task %q: %w", t.Title, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("could not encode tasks: %w", err)
	}

	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("could not save tasks to %s: %w: %w", s.path, ErrFileUnavailable, err)
	}
	s.logger.Logf("[DEBUG] saved %d tasks to %s", len(tasks), s.path)
	return nil
}

// LoadTasks reads every record of the file. A line that is not valid quoted
// text is split on commas and affects no other line. Records with fewer than four
// fields are kept with the missing fields empty and logged as warnings.
// When the file cannot be opened the result is empty and the error wraps
// ErrFileUnavailable.
func (s *TaskStorage) LoadTasks(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path == "" {
		return nil, ErrNoPath
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w: %w", s.path, ErrFileUnavailable, err)
	}
	defer f.Close()

	tasks, err := s.readTasks(f)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w: %w", s.path, ErrFileUnavailable, err)
	}
	s.logger.Logf("[DEBUG] loaded %d tasks from %s", len(tasks), s.path)
	return tasks, nil
}

func (s *TaskStorage) readTasks(r io.Reader) ([]model.Task, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var tasks []model.Task
	for i := 0; i < len(lines); i++ {
		if lines[i] == "" {
			continue
		}
		lineNum := i + 1

		record, n, quoted := splitRecord(lines[i:])
		i += n - 1
		if !quoted {
			s.logger.Logf("[DEBUG] %s:%d: read as unquoted legacy line", s.path, lineNum)
		}

		task, err := decodeRecord(record)
		if err != nil {
			s.logger.Logf("[WARN] %s:%d: %v", s.path, lineNum, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// splitRecord returns the record starting at lines[0] and the number of lines
// it spans. A quoted field may continue on the following lines, but only when
// the joined text is a complete record with every column. Anything else is
// split on commas as written by legacy versions, and spans exactly one line.
func splitRecord(lines []string) (record []string, n int, quoted bool) {
	text := lines[0]
	for n = 1; ; n++ {
		if record, ok := parseCSV(text); ok && (n == 1 || len(record) == numColumns) {
			return record, n, true
		}
		// Even quote count: every quoted field is closed, more lines can't help.
		if strings.Count(text, `"`)%2 == 0 || n == len(lines) {
			break
		}
		text += "\n" + lines[n]
	}
	return strings.Split(lines[0], ","), 1, false
}

func parseCSV(text string) ([]string, bool) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	record, err := cr.Read()
	if err != nil {
		return nil, false
	}
	if _, err := cr.Read(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return record, true
}

func encodeRecord(t model.Task) []string {
	record := make([]string, numColumns)
	record[colTitle] = t.Title
	record[colDescription] = t.Description
	record[colDueDate] = t.DueDate
	record[colCompleted] = formatFlag(t.Completed)
	record[colKind] = string(model.ParseTaskKind(string(t.Kind)))
	record[colUrgencyLevel] = strconv.Itoa(t.UrgencyLevel)
	record[colSubject] = t.Subject
	record[colStudyTime] = strconv.Itoa(t.StudyTime)
	record[colID] = t.ID
	return record
}

// decodeRecord always returns a usable task. A non-nil error describes what
// was defaulted.
func decodeRecord(record []string) (model.Task, error) {
	field := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}

	task := model.Task{
		ID:          field(colID),
		Kind:        model.ParseTaskKind(field(colKind)),
		Title:       field(colTitle),
		Description: field(colDescription),
		DueDate:     field(colDueDate),
		Completed:   field(colCompleted) == "1",
	}

	var errs []error
	if task.ID == "" {
		task.ID = model.NewTaskID()
	} else if _, err := uuid.Parse(task.ID); err != nil {
		errs = append(errs, fmt.Errorf("%w: id %q replaced", ErrMalformedRecord, task.ID))
		task.ID = model.NewTaskID()
	}
	if len(record) < numRequiredColumns {
		errs = append(errs, fmt.Errorf("%w: %d of %d fields", ErrMalformedRecord, len(record), numRequiredColumns))
	}

	switch task.Kind {
	case model.TaskKindPersonal:
		n, err := parseInt(field(colUrgencyLevel))
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: urgency level: %w", ErrMalformedRecord, err))
		}
		task.UrgencyLevel = n
	case model.TaskKindSchool:
		task.Subject = field(colSubject)
		n, err := parseInt(field(colStudyTime))
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: study time: %w", ErrMalformedRecord, err))
		}
		task.StudyTime = n
	}

	return task, errors.Join(errs...)
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	perm := os.FileMode(filePerm)
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
