package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/lazyreminder/internal/model"
)

const snapshotTimeout = 5 * time.Second

var allPanes = []string{viewTasks, viewList, viewTypes}

type confirmState struct {
	message string
	onYes   func() error
	onNo    func() error
}

type pathState struct {
	title  string
	value  string
	submit func(path string) error
}

func paneLabel(pane string) string {
	switch pane {
	case viewList:
		return "grocery list"
	case viewTypes:
		return "grocery types"
	default:
		return "task list"
	}
}

func (u *UI) beginAdd() error {
	switch u.focus {
	case viewList:
		types := u.types.Types()
		if len(types) == 0 {
			u.status = "add a grocery type first"
			return nil
		}
		u.form = newGroceryItemForm(types)
	case viewTypes:
		u.form = newGroceryTypeForm()
	default:
		u.form = newTaskForm(nil, -1, u.now())
	}
	return nil
}

func (u *UI) beginEdit() error {
	if u.focus != viewTasks {
		return nil
	}
	task, ok := u.tasks.GetTask(u.selectedTask)
	if !ok {
		return nil
	}
	u.form = newTaskForm(&task, u.selectedTask, u.now())
	return nil
}

// submitForm applies the open form. Validation failures are reported on the
// status line and leave every collection untouched.
func (u *UI) submitForm() error {
	if u.form == nil {
		return nil
	}

	switch u.form.kind {
	case formTask:
		task, err := parseTaskForm(u.form.fields, u.now())
		if err != nil {
			u.status = err.Error()
			return nil
		}
		if u.form.editIndex >= 0 {
			if !u.tasks.EditTask(u.form.editIndex, task) {
				u.status = "the edited task no longer exists"
				u.form = nil
				return nil
			}
		} else {
			u.tasks.AddTask(task.Deadline, task.Priority, task.Description)
		}
		u.selectedTask = lastIndexOf(u.tasks.Tasks(), task)
		u.dirty[viewTasks] = true
	case formGroceryItem:
		groceryType, units, err := parseGroceryItemForm(u.form, u.types.Types())
		if err != nil {
			u.status = err.Error()
			return nil
		}
		u.items.AddType(groceryType, units)
		u.selectedItem = u.items.Len() - 1
		u.dirty[viewList] = true
	case formGroceryType:
		description, cost, err := parseGroceryTypeForm(u.form.fields)
		if err != nil {
			u.status = err.Error()
			return nil
		}
		u.types.Add(description, cost)
		u.selectedType = u.types.Len() - 1
		u.dirty[viewTypes] = true
	}

	u.form = nil
	u.status = ""
	return nil
}

func lastIndexOf(tasks []model.Task, task model.Task) int {
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i].Deadline.Equal(task.Deadline) && tasks[i].Priority == task.Priority && tasks[i].Description == task.Description {
			return i
		}
	}
	return 0
}

func (u *UI) beginDelete() error {
	var label string
	switch u.focus {
	case viewList:
		item, ok := u.items.Get(u.selectedItem)
		if !ok {
			return nil
		}
		label = fmt.Sprintf("%q from the grocery list", item.Description)
	case viewTypes:
		groceryType, ok := u.types.Get(u.selectedType)
		if !ok {
			return nil
		}
		label = fmt.Sprintf("grocery type %q", groceryType.Description)
	default:
		task, ok := u.tasks.GetTask(u.selectedTask)
		if !ok {
			return nil
		}
		label = fmt.Sprintf("task %q", task.Description)
	}

	pane := u.focus
	u.confirm = &confirmState{
		message: fmt.Sprintf("Delete %s? (y/n)", label),
		onYes: func() error {
			u.deleteSelected(pane)
			return nil
		},
	}
	return nil
}

func (u *UI) deleteSelected(pane string) {
	removed := false
	switch pane {
	case viewList:
		removed = u.items.Remove(u.selectedItem)
	case viewTypes:
		removed = u.types.Remove(u.selectedType)
	default:
		removed = u.tasks.RemoveTask(u.selectedTask)
	}
	if removed {
		u.dirty[pane] = true
		u.status = ""
	}
	u.clampSelections()
}

func (u *UI) answerConfirm(yes bool) error {
	confirm := u.confirm
	u.confirm = nil
	if confirm == nil {
		return nil
	}
	if yes && confirm.onYes != nil {
		return confirm.onYes()
	}
	if !yes && confirm.onNo != nil {
		return confirm.onNo()
	}
	return nil
}

// withSaveCheck runs action once every pane in panes has either been saved
// or the user declined to save it. Escaping the prompt abandons the action.
func (u *UI) withSaveCheck(panes []string, action func() error) error {
	for i, pane := range panes {
		if !u.dirty[pane] {
			continue
		}
		rest := panes[i+1:]
		u.confirm = &confirmState{
			message: fmt.Sprintf("Unsaved changes in the %s. Save first? (y/n/esc)", paneLabel(pane)),
			onYes: func() error {
				return u.saveThen(pane, func() error { return u.withSaveCheck(rest, action) })
			},
			onNo: func() error {
				return u.withSaveCheck(rest, action)
			},
		}
		return nil
	}
	return action()
}

// saveThen saves pane to its current file, asking for a path when it has
// none, and continues with next on success.
func (u *UI) saveThen(pane string, next func() error) error {
	save := func(path string) error {
		if err := u.saveTo(pane, path); err != nil {
			return nil
		}
		if next != nil {
			return next()
		}
		return nil
	}

	if path := u.paths[pane]; path != "" {
		return save(path)
	}
	u.askPath("Save "+paneLabel(pane)+" as", "", save)
	return nil
}

func (u *UI) saveTo(pane, path string) error {
	var err error
	switch pane {
	case viewList:
		err = u.items.SaveFile(path)
	case viewTypes:
		err = u.types.SaveFile(path)
	default:
		err = u.tasks.SaveFile(path)
	}
	if err != nil {
		u.status = "save failed: " + err.Error()
		u.logger.Error("save failed", "pane", pane, "path", path, "err", err)
		return err
	}

	u.paths[pane] = path
	u.dirty[pane] = false
	u.status = "Saved " + path
	u.logger.Info("saved", "pane", pane, "path", path)
	u.snapshot(pane, path)
	return nil
}

// snapshot mirrors a saved collection into the snapshot database. A failure
// here never undoes the file save.
func (u *UI) snapshot(pane, path string) {
	if u.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	var err error
	switch pane {
	case viewList:
		err = u.snapshots.SaveGroceryItems(ctx, path, u.items.Items())
	case viewTypes:
		err = u.snapshots.SaveGroceryTypes(ctx, path, u.types.Types())
	default:
		err = u.snapshots.SaveTasks(ctx, path, u.tasks.Tasks())
	}
	if err != nil {
		u.status += " (snapshot failed: " + err.Error() + ")"
		u.logger.Warn("snapshot failed", "pane", pane, "path", path, "err", err)
	}
}

func (u *UI) beginSave() error {
	return u.saveThen(u.focus, nil)
}

func (u *UI) beginSaveAs() error {
	pane := u.focus
	u.askPath("Save "+paneLabel(pane)+" as", u.paths[pane], func(path string) error {
		_ = u.saveTo(pane, path)
		return nil
	})
	return nil
}

func (u *UI) beginOpen() error {
	pane := u.focus
	return u.withSaveCheck([]string{pane}, func() error {
		u.askPath("Open "+paneLabel(pane), u.paths[pane], func(path string) error {
			_ = u.openFrom(pane, path)
			return nil
		})
		return nil
	})
}

func (u *UI) beginReload() error {
	pane := u.focus
	path := u.paths[pane]
	if path == "" {
		u.status = "the " + paneLabel(pane) + " has no file to reload"
		return nil
	}
	return u.withSaveCheck([]string{pane}, func() error {
		_ = u.openFrom(pane, path)
		return nil
	})
}

// openFrom replaces the pane's collection with the file at path. On failure
// the collection, its path and its unsaved changes are kept as they were.
func (u *UI) openFrom(pane, path string) error {
	var err error
	switch pane {
	case viewList:
		err = u.items.LoadFile(path)
	case viewTypes:
		err = u.types.LoadFile(path)
	default:
		err = u.tasks.LoadFile(path)
	}
	if err != nil {
		u.status = "open failed: " + err.Error()
		u.logger.Warn("open failed", "pane", pane, "path", path, "err", err)
		return err
	}

	u.paths[pane] = path
	u.dirty[pane] = false
	u.resetSelection(pane)
	u.status = "Opened " + path
	u.logger.Info("opened", "pane", pane, "path", path)
	return nil
}

func (u *UI) beginNew() error {
	pane := u.focus
	return u.withSaveCheck([]string{pane}, func() error {
		switch pane {
		case viewList:
			u.items.Clear()
		case viewTypes:
			u.types.Clear()
		default:
			u.tasks.Clear()
		}
		u.paths[pane] = ""
		u.dirty[pane] = false
		u.resetSelection(pane)
		u.status = "New " + paneLabel(pane)
		return nil
	})
}

func (u *UI) beginQuit() error {
	return u.withSaveCheck(allPanes, func() error {
		return gocui.ErrQuit
	})
}

func (u *UI) askPath(title, value string, submit func(path string) error) {
	u.pathPrompt = &pathState{title: title, value: value, submit: submit}
}

func (u *UI) submitPath() error {
	prompt := u.pathPrompt
	if prompt == nil {
		return nil
	}
	path := strings.TrimSpace(prompt.value)
	if path == "" {
		u.status = "a file path is required"
		return nil
	}
	u.pathPrompt = nil
	return prompt.submit(path)
}

func (u *UI) resetSelection(pane string) {
	switch pane {
	case viewList:
		u.selectedItem = 0
	case viewTypes:
		u.selectedType = 0
	default:
		u.selectedTask = 0
	}
}

func (u *UI) clampSelections() {
	u.selectedTask = clamp(u.selectedTask, u.tasks.Len())
	u.selectedItem = clamp(u.selectedItem, u.items.Len())
	u.selectedType = clamp(u.selectedType, u.types.Len())
}

func clamp(index, length int) int {
	if index >= length {
		index = length - 1
	}
	return max(index, 0)
}
