package tasks

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyreminder/internal/model"
	"github.com/Joseda-hg/lazyreminder/internal/tokenfile"
)

// Token is the first line of every task file.
const Token = "ToDoReminder.txt"

const fieldsPerRow = 3

// Deadlines are written as RFC 3339; these layouts are also accepted when
// reading files written by older versions.
var legacyDeadlineLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"02-01-2006 15:04",
	"2006-01-02",
}

// Load replaces the store contents with the tasks read from r. Nothing is
// changed unless the whole input is valid.
func (s *Store) Load(r io.Reader) error {
	loaded, err := decode(r)
	if err != nil {
		return err
	}
	s.tasks = loaded.tasks
	return nil
}

func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open task file: %w", err)
	}
	defer f.Close()

	return s.Load(f)
}

// Save writes the marker line followed by one row per task.
func (s *Store) Save(w io.Writer) error {
	if err := tokenfile.WriteHeader(w, Token); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	for _, task := range s.tasks {
		row := []string{
			task.Deadline.Format(time.RFC3339Nano),
			task.Priority.String(),
			task.Description,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveFile overwrites path with the full task list.
func (s *Store) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}

// LoadDefault loads the program's default task file. A missing file is
// created empty and loaded; recovered reports whether that happened. Any
// other failure is returned and the file on disk is left as it is.
func (s *Store) LoadDefault(path string) (recovered bool, err error) {
	loadErr := s.LoadFile(path)
	if loadErr == nil {
		return false, nil
	}
	if !errors.Is(loadErr, fs.ErrNotExist) {
		return false, loadErr
	}

	empty := NewStore()
	if err := empty.SaveFile(path); err != nil {
		return false, fmt.Errorf("recreate default task file: %w", err)
	}
	if err := s.LoadFile(path); err != nil {
		return false, err
	}
	return true, nil
}

func decode(r io.Reader) (*Store, error) {
	br := bufio.NewReader(r)
	if err := tokenfile.ReadHeader(br, Token); err != nil {
		if errors.Is(err, tokenfile.ErrMismatch) {
			return nil, formatErrorf(1, "%s", err)
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(body))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	loaded := NewStore()
	for {
		offset := cr.InputOffset()
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, formatErrorf(parseErr.StartLine+1, "file is corrupt - %s", parseErr.Err)
			}
			return nil, fmt.Errorf("read task file: %w", err)
		}
		recordLine, _ := cr.FieldPos(0)
		line := recordLine + 1

		// csv skips empty lines; between rows they are corrupt rows.
		if blank := leadingBlankLines(body[offset:]); blank > 0 {
			return nil, formatErrorf(line-blank, "file is corrupt - empty row")
		}

		if len(record) != fieldsPerRow {
			return nil, formatErrorf(line, "file is corrupt - incorrect number of fields: %d; expected %d", len(record), fieldsPerRow)
		}
		deadline, err := parseDeadline(record[0])
		if err != nil {
			return nil, parseErrorf(line, "file is corrupt - deadline %q can not be parsed", record[0])
		}
		priority, err := model.ParsePriority(record[1])
		if err != nil {
			return nil, parseErrorf(line, "file is corrupt - priority %q can not be parsed", record[1])
		}
		loaded.AddTask(deadline, priority, record[2])
	}
	return loaded, nil
}

// leadingBlankLines counts the empty lines at the start of data.
func leadingBlankLines(data []byte) int {
	count := 0
	for {
		switch {
		case bytes.HasPrefix(data, []byte("\r\n")):
			data = data[2:]
		case bytes.HasPrefix(data, []byte("\n")):
			data = data[1:]
		default:
			return count
		}
		count++
	}
}

func parseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	for _, layout := range legacyDeadlineLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q", value)
}
