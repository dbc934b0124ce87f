package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/lazyreminder/internal/db"
	"github.com/Joseda-hg/lazyreminder/internal/grocery"
	"github.com/Joseda-hg/lazyreminder/internal/model"
	"github.com/Joseda-hg/lazyreminder/internal/tasks"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

func TestParseTaskForm(t *testing.T) {
	form := newTaskForm(nil, -1, testNow)
	if form.fields[fieldDeadline].Value != "2025-03-10 10:00" {
		t.Fatalf("expected default deadline one hour ahead, got %q", form.fields[fieldDeadline].Value)
	}
	if form.fields[fieldPriority].Value != model.Normal.Label() {
		t.Fatalf("expected default priority, got %q", form.fields[fieldPriority].Value)
	}

	form.fields[fieldDescription].Value = "  Call the plumber "
	task, err := parseTaskForm(form.fields, testNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if task.Description != "Call the plumber" || task.Priority != model.Normal {
		t.Fatalf("unexpected task %+v", task)
	}

	cases := []struct {
		name     string
		deadline string
		priority string
		desc     string
		want     string
	}{
		{name: "blank deadline", deadline: " ", priority: "Normal", desc: "x", want: "deadline is required"},
		{name: "bad layout", deadline: "10/03/2025", priority: "Normal", desc: "x", want: "invalid deadline"},
		{name: "past deadline", deadline: "2025-03-10 08:59", priority: "Normal", desc: "x", want: "deadline must be in the future"},
		{name: "now is not future", deadline: "2025-03-10 09:00", priority: "Normal", desc: "x", want: "deadline must be in the future"},
		{name: "bad priority", deadline: "2025-03-11 09:00", priority: "Urgent", desc: "x", want: "invalid priority"},
		{name: "blank description", deadline: "2025-03-11 09:00", priority: "Normal", desc: "   ", want: "description is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := newTaskForm(nil, -1, testNow).fields
			fields[fieldDeadline].Value = tc.deadline
			fields[fieldPriority].Value = tc.priority
			fields[fieldDescription].Value = tc.desc
			_, err := parseTaskForm(fields, testNow)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestNewTaskFormPrefillsEdit(t *testing.T) {
	task := model.NewTask(time.Date(2025, 4, 1, 18, 30, 0, 0, time.Local), model.Important, "Dentist")
	form := newTaskForm(&task, 3, testNow)
	if form.editIndex != 3 || form.title() != "Edit Task" {
		t.Fatalf("unexpected form state %+v", form)
	}
	if form.fields[fieldDeadline].Value != "2025-04-01 18:30" {
		t.Fatalf("unexpected deadline %q", form.fields[fieldDeadline].Value)
	}
	if form.fields[fieldDescription].Value != "Dentist" {
		t.Fatalf("unexpected description %q", form.fields[fieldDescription].Value)
	}
}

func TestParseAmount(t *testing.T) {
	value, err := parseAmount("cost", " 3,5 ")
	if err != nil || value != 3.5 {
		t.Fatalf("expected 3.5, got %v %v", value, err)
	}
	for input, want := range map[string]string{
		"":      "cost is required",
		"abc":   "invalid cost",
		"-1":    "cost can not be negative",
		"inf":   "invalid cost",
		"-Inf":  "invalid cost",
		"NaN":   "invalid cost",
		"1e400": "invalid cost",
	} {
		if _, err := parseAmount("cost", input); err == nil || err.Error() != want {
			t.Fatalf("%q: expected %q, got %v", input, want, err)
		}
	}
}

func TestCyclePriority(t *testing.T) {
	if got := nextPriority(model.NotImportant.Label()); got != model.VeryImportant.Label() {
		t.Fatalf("expected wrap to first priority, got %q", got)
	}
	if got := prevPriority(model.VeryImportant.Label()); got != model.NotImportant.Label() {
		t.Fatalf("expected wrap to last priority, got %q", got)
	}
	if got := nextPriority(model.Normal.Label()); got != model.LessImportant.Label() {
		t.Fatalf("expected the next level, got %q", got)
	}
}

func TestCycleType(t *testing.T) {
	types := []model.GroceryType{model.NewGroceryType("Milk", 1), model.NewGroceryType("Bread", 2)}
	form := newGroceryItemForm(types)
	form.cycleType(types, -1)
	if form.typeIndex != 1 || form.fields[fieldItemType].Value != formatGroceryType(types[1]) {
		t.Fatalf("unexpected type selection %d %q", form.typeIndex, form.fields[fieldItemType].Value)
	}
	form.cycleType(types, 1)
	if form.typeIndex != 0 {
		t.Fatalf("expected wrap to first type, got %d", form.typeIndex)
	}
}

func TestComputeLayout(t *testing.T) {
	layout := computeLayout(120, 30)
	if layout.leftWidth != 72 {
		t.Fatalf("expected left width 72, got %d", layout.leftWidth)
	}
	if layout.listHeight+layout.typeHeight != 30 {
		t.Fatalf("expected panes to fill the height, got %+v", layout)
	}

	small := computeLayout(10, 2)
	if small.leftWidth < 20 || small.listHeight < 4 || small.typeHeight < 4 {
		t.Fatalf("expected minimum sizes, got %+v", small)
	}
}

func TestSubmitTaskFormKeepsOrder(t *testing.T) {
	ui := newTestUI(t)
	addTestTask(t, ui, "2025-03-12 09:00", "Second")
	addTestTask(t, ui, "2025-03-11 09:00", "First")
	addTestTask(t, ui, "2025-03-13 09:00", "Third")

	assertDescriptions(t, ui.tasks.Tasks(), "First", "Second", "Third")
	if ui.selectedTask != 2 {
		t.Fatalf("expected the new task to be selected, got %d", ui.selectedTask)
	}
	if !ui.dirty[viewTasks] {
		t.Fatalf("expected task list to be dirty")
	}
}

func TestSubmitTaskFormValidationKeepsForm(t *testing.T) {
	ui := newTestUI(t)
	if err := ui.add(nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	ui.form.fields[fieldDeadline].Value = "2025-03-01 09:00"
	ui.form.fields[fieldDescription].Value = "Too late"
	if err := ui.submitFormNow(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.form == nil {
		t.Fatalf("expected form to stay open")
	}
	if ui.status != "deadline must be in the future" {
		t.Fatalf("unexpected status %q", ui.status)
	}
	if ui.tasks.Len() != 0 || ui.dirty[viewTasks] {
		t.Fatalf("expected task list untouched")
	}
}

func TestEditTaskRepositions(t *testing.T) {
	ui := newTestUI(t)
	addTestTask(t, ui, "2025-03-11 09:00", "First")
	addTestTask(t, ui, "2025-03-12 09:00", "Second")

	ui.selectedTask = 0
	if err := ui.edit(nil, nil); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if ui.form == nil || ui.form.editIndex != 0 {
		t.Fatalf("expected edit form for the first task")
	}
	ui.form.fields[fieldDeadline].Value = "2025-03-20 09:00"
	ui.form.fields[fieldDescription].Value = "Moved"
	if err := ui.submitFormNow(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	assertDescriptions(t, ui.tasks.Tasks(), "Second", "Moved")
	if ui.selectedTask != 1 {
		t.Fatalf("expected selection to follow the edited task, got %d", ui.selectedTask)
	}
}

func TestEditCancelLeavesTask(t *testing.T) {
	ui := newTestUI(t)
	addTestTask(t, ui, "2025-03-11 09:00", "Keep")
	ui.dirty[viewTasks] = false

	if err := ui.edit(nil, nil); err != nil {
		t.Fatalf("edit: %v", err)
	}
	ui.form.fields[fieldDescription].Value = "Changed"
	if err := ui.cancelForm(nil, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	assertDescriptions(t, ui.tasks.Tasks(), "Keep")
	if ui.dirty[viewTasks] {
		t.Fatalf("expected cancel to leave the list clean")
	}
}

func TestGroceryForms(t *testing.T) {
	ui := newTestUI(t)
	ui.focus = viewList
	if err := ui.add(nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if ui.form != nil || ui.status != "add a grocery type first" {
		t.Fatalf("expected the list form to require a type, status %q", ui.status)
	}

	ui.focus = viewTypes
	if err := ui.add(nil, nil); err != nil {
		t.Fatalf("add type: %v", err)
	}
	ui.form.fields[fieldTypeDescription].Value = "Coffee, 250g"
	ui.form.fields[fieldTypeCost].Value = "4.25"
	if err := ui.submitFormNow(nil, nil); err != nil {
		t.Fatalf("submit type: %v", err)
	}
	if ui.types.Len() != 1 || !ui.dirty[viewTypes] {
		t.Fatalf("expected one dirty grocery type")
	}

	ui.focus = viewList
	if err := ui.add(nil, nil); err != nil {
		t.Fatalf("add item: %v", err)
	}
	ui.form.fields[fieldItemUnits].Value = "2"
	if err := ui.submitFormNow(nil, nil); err != nil {
		t.Fatalf("submit item: %v", err)
	}
	item, ok := ui.items.Get(0)
	if !ok || item.Description != "Coffee, 250g" || item.Units != 2 {
		t.Fatalf("unexpected item %+v", item)
	}
	if ui.items.TotalCost() != 8.5 {
		t.Fatalf("expected total 8.5, got %v", ui.items.TotalCost())
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	ui := newTestUI(t)
	addTestTask(t, ui, "2025-03-11 09:00", "First")
	addTestTask(t, ui, "2025-03-12 09:00", "Second")
	ui.selectedTask = 1

	if err := ui.remove(nil, nil); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ui.confirm == nil || !strings.Contains(ui.confirm.message, "Second") {
		t.Fatalf("expected a confirmation prompt")
	}
	if err := ui.confirmNo(nil, nil); err != nil {
		t.Fatalf("confirm no: %v", err)
	}
	if ui.tasks.Len() != 2 {
		t.Fatalf("expected no deletion after no")
	}

	if err := ui.remove(nil, nil); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := ui.confirmYes(nil, nil); err != nil {
		t.Fatalf("confirm yes: %v", err)
	}
	assertDescriptions(t, ui.tasks.Tasks(), "First")
	if ui.selectedTask != 0 {
		t.Fatalf("expected selection to be clamped, got %d", ui.selectedTask)
	}
}

func TestQuitAsksForDirtyPanes(t *testing.T) {
	ui := newTestUI(t)
	ui.dirty[viewTasks] = true
	ui.dirty[viewTypes] = true

	if err := ui.quit(nil, nil); err != nil {
		t.Fatalf("quit: %v", err)
	}
	if ui.confirm == nil || !strings.Contains(ui.confirm.message, "task list") {
		t.Fatalf("expected a prompt for the task list")
	}

	if err := ui.confirmNo(nil, nil); err != nil {
		t.Fatalf("confirm no: %v", err)
	}
	if ui.confirm == nil || !strings.Contains(ui.confirm.message, "grocery types") {
		t.Fatalf("expected a prompt for the grocery types")
	}

	if err := ui.confirmNo(nil, nil); err != gocui.ErrQuit {
		t.Fatalf("expected quit once every pane was answered, got %v", err)
	}
}

func TestQuitEscapeCancels(t *testing.T) {
	ui := newTestUI(t)
	ui.dirty[viewList] = true

	if err := ui.quit(nil, nil); err != nil {
		t.Fatalf("quit: %v", err)
	}
	if err := ui.confirmCancel(nil, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if ui.confirm != nil || ui.inputActive() {
		t.Fatalf("expected the prompt to close")
	}
	if !ui.dirty[viewList] {
		t.Fatalf("expected unsaved changes to remain")
	}
}

func TestQuitSavesBeforeLeaving(t *testing.T) {
	ui := newTestUI(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.txt")
	ui.paths[viewTasks] = path
	addTestTask(t, ui, "2025-03-11 09:00", "Persist me")

	if err := ui.quit(nil, nil); err != nil {
		t.Fatalf("quit: %v", err)
	}
	if err := ui.confirmYes(nil, nil); err != gocui.ErrQuit {
		t.Fatalf("expected quit after saving, got %v", err)
	}

	reloaded := tasks.NewStore()
	if err := reloaded.LoadFile(path); err != nil {
		t.Fatalf("load saved file: %v", err)
	}
	assertDescriptions(t, reloaded.Tasks(), "Persist me")
}

func TestSaveWithoutPathAsksForOne(t *testing.T) {
	ui := newTestUI(t)
	ui.focus = viewTypes
	ui.types.Add("Eggs", 3)
	ui.dirty[viewTypes] = true

	if err := ui.save(nil, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ui.pathPrompt == nil {
		t.Fatalf("expected a path prompt")
	}

	ui.pathPrompt.value = "   "
	if err := ui.submitPathNow(nil, nil); err != nil {
		t.Fatalf("submit blank path: %v", err)
	}
	if ui.pathPrompt == nil || ui.status != "a file path is required" {
		t.Fatalf("expected the prompt to stay open, status %q", ui.status)
	}

	path := filepath.Join(t.TempDir(), "types.txt")
	ui.pathPrompt.value = path
	if err := ui.submitPathNow(nil, nil); err != nil {
		t.Fatalf("submit path: %v", err)
	}
	if ui.paths[viewTypes] != path || ui.dirty[viewTypes] {
		t.Fatalf("expected the pane to be saved to %s", path)
	}

	loaded := grocery.NewTypeManager()
	if err := loaded.LoadFile(path); err != nil {
		t.Fatalf("load saved types: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("expected 1 type, got %d", loaded.Len())
	}
}

func TestSaveRecordsSnapshot(t *testing.T) {
	ui := newTestUI(t)
	store, cleanup := newTestSnapshots(t)
	defer cleanup()
	ui.snapshots = store

	addTestTask(t, ui, "2025-03-11 09:00", "Snapshot me")
	path := filepath.Join(t.TempDir(), "tasks.txt")
	if err := ui.saveTo(viewTasks, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ui.status != "Saved "+path {
		t.Fatalf("unexpected status %q", ui.status)
	}

	saved, err := store.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list snapshot: %v", err)
	}
	assertDescriptions(t, saved, "Snapshot me")

	history, err := store.ListHistory(context.Background(), 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 || history[0].Source != path {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestSaveFailureKeepsDirty(t *testing.T) {
	ui := newTestUI(t)
	addTestTask(t, ui, "2025-03-11 09:00", "Unsaved")

	path := t.TempDir()
	if err := ui.saveTo(viewTasks, path); err == nil {
		t.Fatalf("expected saving over a directory to fail")
	}
	if !ui.dirty[viewTasks] || ui.paths[viewTasks] != "" {
		t.Fatalf("expected pane state to be unchanged")
	}
	if !strings.HasPrefix(ui.status, "save failed") {
		t.Fatalf("unexpected status %q", ui.status)
	}
}

func TestOpenFailureLeavesState(t *testing.T) {
	ui := newTestUI(t)
	addTestTask(t, ui, "2025-03-11 09:00", "Current")

	path := filepath.Join(t.TempDir(), "broken.txt")
	if err := os.WriteFile(path, []byte("not a task file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := ui.openFrom(viewTasks, path); err == nil {
		t.Fatalf("expected open to fail")
	}
	assertDescriptions(t, ui.tasks.Tasks(), "Current")
	if !ui.dirty[viewTasks] || ui.paths[viewTasks] != "" {
		t.Fatalf("expected pane state to be unchanged")
	}
	if !strings.HasPrefix(ui.status, "open failed") {
		t.Fatalf("unexpected status %q", ui.status)
	}
}

func TestOpenReplacesCollection(t *testing.T) {
	ui := newTestUI(t)
	source := tasks.NewStore()
	source.AddTask(time.Date(2025, 5, 1, 8, 0, 0, 0, time.Local), model.Important, "From disk")
	path := filepath.Join(t.TempDir(), "tasks.txt")
	if err := source.SaveFile(path); err != nil {
		t.Fatalf("save source: %v", err)
	}

	if err := ui.open(nil, nil); err != nil {
		t.Fatalf("open: %v", err)
	}
	if ui.pathPrompt == nil {
		t.Fatalf("expected a path prompt")
	}
	ui.pathPrompt.value = path
	if err := ui.submitPathNow(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	assertDescriptions(t, ui.tasks.Tasks(), "From disk")
	if ui.paths[viewTasks] != path || ui.dirty[viewTasks] {
		t.Fatalf("expected a clean pane bound to %s", path)
	}
}

func TestNewClearsPane(t *testing.T) {
	ui := newTestUI(t)
	ui.focus = viewList
	ui.items.Add("Milk", 1, 2)
	ui.paths[viewList] = "/tmp/list.txt"

	if err := ui.newFile(nil, nil); err != nil {
		t.Fatalf("new: %v", err)
	}
	if ui.items.Len() != 0 || ui.paths[viewList] != "" {
		t.Fatalf("expected an empty untitled list")
	}
}

func TestHandlersIgnoredWhileFormOpen(t *testing.T) {
	ui := newTestUI(t)
	if err := ui.add(nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := ui.focusList(nil, nil); err != nil {
		t.Fatalf("focus: %v", err)
	}
	if ui.focus != viewTasks {
		t.Fatalf("expected focus to stay while the form is open")
	}
	if err := ui.quit(nil, nil); err != nil {
		t.Fatalf("expected quit to be ignored, got %v", err)
	}
}

func TestFormatTaskSummary(t *testing.T) {
	overdue := model.NewTask(testNow.Add(-time.Minute), model.VeryImportant, "Late")
	upcoming := model.NewTask(testNow.Add(time.Hour), model.Normal, "Soon")

	if got := formatTaskSummary(overdue, testNow); !strings.HasPrefix(got, "!") || !strings.Contains(got, "Late") {
		t.Fatalf("expected overdue marker, got %q", got)
	}
	if got := formatTaskSummary(upcoming, testNow); strings.HasPrefix(got, "!") {
		t.Fatalf("unexpected overdue marker, got %q", got)
	}
	if got := formatFileLabel("", true); got != "untitled*" {
		t.Fatalf("unexpected file label %q", got)
	}
	if got := formatFileLabel("/a/b/tasks.txt", false); got != "tasks.txt" {
		t.Fatalf("unexpected file label %q", got)
	}
}

func newTestUI(t *testing.T) *UI {
	t.Helper()
	ui := newUI(Options{})
	ui.now = func() time.Time { return testNow }
	return ui
}

func newTestSnapshots(t *testing.T) (*db.Store, func()) {
	t.Helper()
	sqlDB, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db.NewStore(sqlDB), func() {
		_ = sqlDB.Close()
	}
}

func addTestTask(t *testing.T, ui *UI, deadline, description string) {
	t.Helper()
	ui.focus = viewTasks
	if err := ui.add(nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	ui.form.fields[fieldDeadline].Value = deadline
	ui.form.fields[fieldDescription].Value = description
	if err := ui.submitFormNow(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.form != nil {
		t.Fatalf("expected form to close, status %q", ui.status)
	}
}

func assertDescriptions(t *testing.T, list []model.Task, want ...string) {
	t.Helper()
	if len(list) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(list))
	}
	for i, task := range list {
		if task.Description != want[i] {
			t.Fatalf("task %d: expected %q, got %q", i, want[i], task.Description)
		}
	}
}
