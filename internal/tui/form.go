package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyreminder/internal/model"
)

const deadlineLayout = "2006-01-02 15:04"

type formKind int

const (
	formTask formKind = iota
	formGroceryItem
	formGroceryType
)

type formField struct {
	Label string
	Value string
}

// Task form fields.
const (
	fieldDeadline = iota
	fieldPriority
	fieldDescription
)

// Grocery item form fields.
const (
	fieldItemType = iota
	fieldItemUnits
)

// Grocery type form fields.
const (
	fieldTypeDescription = iota
	fieldTypeCost
)

type formState struct {
	kind      formKind
	fields    []formField
	index     int
	editIndex int
	typeIndex int
}

func (f *formState) title() string {
	switch f.kind {
	case formGroceryItem:
		return "Add To Grocery List"
	case formGroceryType:
		return "New Grocery Type"
	default:
		if f.editIndex >= 0 {
			return "Edit Task"
		}
		return "New Task"
	}
}

// newTaskForm prefills the form from task when editIndex is not negative.
func newTaskForm(task *model.Task, editIndex int, now time.Time) *formState {
	fields := []formField{
		{Label: "Deadline (YYYY-MM-DD HH:MM)"},
		{Label: "Priority (space/←→)"},
		{Label: "Description"},
	}

	if task == nil {
		fields[fieldDeadline].Value = now.Add(time.Hour).Truncate(time.Minute).Format(deadlineLayout)
		fields[fieldPriority].Value = model.Normal.Label()
		return &formState{kind: formTask, fields: fields, editIndex: -1}
	}

	fields[fieldDeadline].Value = task.Deadline.Local().Format(deadlineLayout)
	fields[fieldPriority].Value = task.Priority.Label()
	fields[fieldDescription].Value = task.Description
	return &formState{kind: formTask, fields: fields, editIndex: editIndex}
}

func newGroceryItemForm(types []model.GroceryType) *formState {
	form := &formState{
		kind: formGroceryItem,
		fields: []formField{
			{Label: "Type (space/←→)"},
			{Label: "Units", Value: "1"},
		},
		editIndex: -1,
	}
	if len(types) > 0 {
		form.fields[fieldItemType].Value = formatGroceryType(types[0])
	}
	return form
}

func newGroceryTypeForm() *formState {
	return &formState{
		kind: formGroceryType,
		fields: []formField{
			{Label: "Description"},
			{Label: "Cost", Value: "0"},
		},
		editIndex: -1,
	}
}

// isCycleField reports whether the field is changed with space and the
// arrow keys instead of typing.
func (f *formState) isCycleField(index int) bool {
	switch f.kind {
	case formTask:
		return index == fieldPriority
	case formGroceryItem:
		return index == fieldItemType
	default:
		return false
	}
}

// parseTaskForm validates the task fields. The deadline must be later than
// now and the description must not be blank.
func parseTaskForm(fields []formField, now time.Time) (model.Task, error) {
	deadline, err := parseDeadline(fields[fieldDeadline].Value, now)
	if err != nil {
		return model.Task{}, err
	}

	priority, err := model.ParsePriority(fields[fieldPriority].Value)
	if err != nil {
		return model.Task{}, fmt.Errorf("invalid priority")
	}

	description := strings.TrimSpace(fields[fieldDescription].Value)
	if description == "" {
		return model.Task{}, fmt.Errorf("description is required")
	}

	return model.NewTask(deadline, priority, description), nil
}

func parseDeadline(value string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("deadline is required")
	}
	parsed, err := time.ParseInLocation(deadlineLayout, trimmed, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline, use YYYY-MM-DD HH:MM")
	}
	if !parsed.After(now) {
		return time.Time{}, fmt.Errorf("deadline must be in the future")
	}
	return parsed, nil
}

func parseGroceryTypeForm(fields []formField) (string, float64, error) {
	cost, err := parseAmount("cost", fields[fieldTypeCost].Value)
	if err != nil {
		return "", 0, err
	}
	return strings.TrimSpace(fields[fieldTypeDescription].Value), cost, nil
}

func parseGroceryItemForm(form *formState, types []model.GroceryType) (model.GroceryType, float64, error) {
	if form.typeIndex < 0 || form.typeIndex >= len(types) {
		return model.GroceryType{}, 0, fmt.Errorf("add a grocery type first")
	}
	units, err := parseAmount("units", form.fields[fieldItemUnits].Value)
	if err != nil {
		return model.GroceryType{}, 0, err
	}
	return types[form.typeIndex], units, nil
}

func parseAmount(name, value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
	if err != nil || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
		return 0, fmt.Errorf("invalid %s", name)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s can not be negative", name)
	}
	return parsed, nil
}

func nextPriority(current string) string {
	return cyclePriority(current, 1)
}

func prevPriority(current string) string {
	return cyclePriority(current, -1)
}

func cyclePriority(current string, delta int) string {
	order := model.Priorities()
	index := 0
	if parsed, err := model.ParsePriority(current); err == nil {
		index = int(parsed)
	}
	index = (index + delta + len(order)) % len(order)
	return order[index].Label()
}

// cycleType moves the selected grocery type and updates the field label.
func (f *formState) cycleType(types []model.GroceryType, delta int) {
	if len(types) == 0 {
		f.typeIndex = 0
		f.fields[fieldItemType].Value = ""
		return
	}
	f.typeIndex = (f.typeIndex + delta + len(types)) % len(types)
	f.fields[fieldItemType].Value = formatGroceryType(types[f.typeIndex])
}
