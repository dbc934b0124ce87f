package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Joseda-hg/lazyreminder/internal/db"
	"github.com/Joseda-hg/lazyreminder/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const historyLimit = 20

var errNotFound = errors.New("not found")

var templateFuncs = template.FuncMap{
	"formatDeadline": func(value time.Time) string { return value.Local().Format("2006-01-02 15:04") },
	"formatTime":     func(value time.Time) string { return value.Local().Format("2006-01-02 15:04:05") },
	"formatAmount":   func(value float64) string { return strconv.FormatFloat(value, 'f', 2, 64) },
}

var (
	indexTemplate = template.Must(template.New("index.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/index.tmpl"))
	taskTemplate  = template.Must(template.New("task.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/task.tmpl"))
)

// Server serves the last saved snapshot. It never sees the UI's in-memory
// lists.
type Server struct {
	store  *db.Store
	logger *log.Logger
	now    func() time.Time
}

type taskRow struct {
	Position int
	Task     model.Task
	Overdue  bool
}

type groceriesPayload struct {
	Types []model.GroceryType `json:"types"`
	Items []model.GroceryItem `json:"items"`
	Total float64             `json:"total"`
}

func NewServer(store *db.Store, logger *log.Logger) *Server {
	return &Server{store: store, logger: logger, now: time.Now}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/tasks/", s.taskHandler)
	mux.HandleFunc("/api/tasks", s.apiTasksHandler)
	mux.HandleFunc("/api/tasks/", s.apiTaskHandler)
	mux.HandleFunc("/api/groceries", s.apiGroceriesHandler)
	mux.HandleFunc("/api/history", s.apiHistoryHandler)
	return mux
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	filter := filterFromRequest(r)
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	items, err := s.store.ListGroceryItems(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	history, err := s.store.ListHistory(ctx, historyLimit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	data := struct {
		Query     string
		TaskCount int
		Tasks     []taskRow
		Items     []model.GroceryItem
		Total     float64
		History   []model.HistoryEntry
	}{
		Query:     filter.Query,
		TaskCount: len(tasks),
		Tasks:     s.buildTaskRows(tasks, filter),
		Items:     items,
		Total:     totalCost(items),
		History:   history,
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
}

// buildTaskRows keeps each task's position in the full list so links stay
// valid while a filter is applied.
func (s *Server) buildTaskRows(tasks []model.Task, filter model.TaskFilter) []taskRow {
	now := s.now()
	rows := make([]taskRow, 0, len(tasks))
	for i, task := range tasks {
		if !filter.Matches(task) {
			continue
		}
		rows = append(rows, taskRow{Position: i, Task: task, Overdue: task.Deadline.Before(now)})
	}
	return rows
}

func (s *Server) taskHandler(w http.ResponseWriter, r *http.Request) {
	task, position, err := s.lookupTask(r, "/tasks/")
	if err != nil {
		s.writeError(w, lookupStatus(err), err)
		return
	}

	history, err := s.tasksHistory(r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	data := struct {
		Position int
		Task     model.Task
		Overdue  bool
		History  []model.HistoryEntry
	}{Position: position, Task: task, Overdue: task.Deadline.Before(s.now()), History: history}

	if err := taskTemplate.Execute(w, data); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func (s *Server) apiTasksHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, filterFromRequest(r).Apply(tasks))
}

func (s *Server) apiTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, position, err := s.lookupTask(r, "/api/tasks/")
	if err != nil {
		s.writeError(w, lookupStatus(err), err)
		return
	}

	history, err := s.tasksHistory(r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	payload := struct {
		Position int                  `json:"position"`
		Task     model.Task           `json:"task"`
		History  []model.HistoryEntry `json:"history"`
	}{Position: position, Task: task, History: history}

	writeJSON(w, payload)
}

func (s *Server) apiGroceriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	types, err := s.store.ListGroceryTypes(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	items, err := s.store.ListGroceryItems(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, groceriesPayload{Types: types, Items: items, Total: totalCost(items)})
}

func (s *Server) apiHistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := historyLimit
	if value := strings.TrimSpace(r.URL.Query().Get("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", value))
			return
		}
		limit = parsed
	}

	history, err := s.store.ListHistory(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, history)
}

func (s *Server) lookupTask(r *http.Request, prefix string) (model.Task, int, error) {
	position, err := parsePosition(r.URL.Path, prefix)
	if err != nil {
		return model.Task{}, 0, err
	}

	tasks, err := s.store.ListTasks(r.Context())
	if err != nil {
		return model.Task{}, 0, err
	}
	if position >= len(tasks) {
		return model.Task{}, 0, fmt.Errorf("%w: no task at position %d", errNotFound, position)
	}
	return tasks[position], position, nil
}

// lookupStatus maps a lookupTask error to its response code. Store failures
// are server errors.
func lookupStatus(err error) int {
	if errors.Is(err, errNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) tasksHistory(r *http.Request) ([]model.HistoryEntry, error) {
	history, err := s.store.ListHistory(r.Context(), 0)
	if err != nil {
		return nil, err
	}

	result := make([]model.HistoryEntry, 0, len(history))
	for _, entry := range history {
		if entry.Collection == db.CollectionTasks {
			result = append(result, entry)
		}
	}
	if len(result) > historyLimit {
		result = result[:historyLimit]
	}
	return result, nil
}

func filterFromRequest(r *http.Request) model.TaskFilter {
	filter := model.TaskFilter{Query: strings.TrimSpace(r.URL.Query().Get("q"))}

	if value := strings.TrimSpace(r.URL.Query().Get("priority")); value != "" {
		if parsed, err := model.ParsePriority(value); err == nil {
			filter.Priority = &parsed
		}
	}

	if value := strings.TrimSpace(r.URL.Query().Get("due_before")); value != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
			filter.DueBefore = &parsed
		}
	}

	if value := strings.TrimSpace(r.URL.Query().Get("due_after")); value != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
			filter.DueAfter = &parsed
		}
	}

	return filter
}

func parsePosition(path, prefix string) (int, error) {
	if !strings.HasPrefix(path, prefix) {
		return 0, fmt.Errorf("%w: invalid path", errNotFound)
	}
	value := strings.TrimPrefix(path, prefix)
	value = strings.Trim(value, "/")
	if value == "" {
		return 0, fmt.Errorf("%w: missing position", errNotFound)
	}
	position, err := strconv.Atoi(value)
	if err != nil || position < 0 {
		return 0, fmt.Errorf("%w: invalid position %q", errNotFound, value)
	}
	return position, nil
}

func totalCost(items []model.GroceryItem) float64 {
	var total float64
	for _, item := range items {
		total += item.TotalCost()
	}
	return total
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if s.logger != nil && status >= http.StatusInternalServerError {
		s.logger.Error("web request failed", "status", status, "err", err)
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
