package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestNewTaskNormalizesEmptyDescription(t *testing.T) {
	task := NewTask(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), Normal, "")
	if task.Description != "No description" {
		t.Fatalf("expected default description, got %q", task.Description)
	}

	task.SetDescription("Water plants")
	if task.Description != "Water plants" {
		t.Fatalf("expected description to be set, got %q", task.Description)
	}

	task.SetDescription("")
	if task.Description != "No description" {
		t.Fatalf("expected setter to normalize, got %q", task.Description)
	}
}

func TestNormalizedTaskKeepsOtherFields(t *testing.T) {
	deadline := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	task := Task{Deadline: deadline, Priority: LessImportant}.Normalized()
	if !task.Deadline.Equal(deadline) || task.Priority != LessImportant {
		t.Fatalf("unexpected task after normalization: %+v", task)
	}
	if task.Description != DefaultTaskDescription {
		t.Fatalf("expected default description, got %q", task.Description)
	}
}

func TestParsePriorityAcceptsNameLegacyAndLabel(t *testing.T) {
	cases := map[string]Priority{
		"VeryImportant":   VeryImportant,
		"Very_important":  VeryImportant,
		"very important":  VeryImportant,
		"Important":       Important,
		"normal":          Normal,
		"Less_important":  LessImportant,
		" NotImportant ":  NotImportant,
		"Not important":   NotImportant,
		"LESS IMPORTANT":  LessImportant,
		"Not_Important":   NotImportant,
		"VERY_IMPORTANT ": VeryImportant,
	}
	for input, want := range cases {
		got, err := ParsePriority(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", input, want, got)
		}
	}

	for _, input := range []string{"", "Urgent", "3", "Very-important"} {
		if _, err := ParsePriority(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestPriorityOrderAndLabels(t *testing.T) {
	all := Priorities()
	if len(all) != 5 {
		t.Fatalf("expected 5 priorities, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] >= all[i] {
			t.Fatalf("priorities out of order at %d", i)
		}
	}
	if VeryImportant.Label() != "Very important" {
		t.Fatalf("unexpected label %q", VeryImportant.Label())
	}
	if Priority(9).Valid() {
		t.Fatalf("expected out of range priority to be invalid")
	}
}

func TestPriorityJSONUsesName(t *testing.T) {
	data, err := json.Marshal(NewTask(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Important, "x"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Priority string `json:"priority"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Priority != "Important" {
		t.Fatalf("expected priority name in JSON, got %q", decoded.Priority)
	}
}

func TestGroceryNormalization(t *testing.T) {
	groceryType := NewGroceryType("", -3)
	if groceryType.Description != "No Description" {
		t.Fatalf("expected default grocery description, got %q", groceryType.Description)
	}
	if groceryType.Cost != 0 {
		t.Fatalf("expected negative cost to clamp to 0, got %v", groceryType.Cost)
	}

	item := NewGroceryItem("Eggs, 10p", 34.95, -1)
	if item.Units != 0 || item.TotalCost() != 0 {
		t.Fatalf("expected negative units to clamp to 0, got %+v", item)
	}

	item = NewGroceryItem("Milk, 1.5L", 17.5, 2)
	if math.Abs(item.TotalCost()-35) > 1e-9 {
		t.Fatalf("expected total 35, got %v", item.TotalCost())
	}

	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := NormalizeAmount(value); got != 0 {
			t.Fatalf("expected %v to clamp to 0, got %v", value, got)
		}
	}
	if item := NewGroceryItem("Rice", math.Inf(1), 2); item.Cost != 0 || item.TotalCost() != 0 {
		t.Fatalf("expected infinite cost to clamp to 0, got %+v", item)
	}
}

func TestTaskFilter(t *testing.T) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	tasks := []Task{
		NewTask(base, VeryImportant, "Pay rent"),
		NewTask(base.Add(24*time.Hour), Normal, "Buy milk"),
		NewTask(base.Add(48*time.Hour), Normal, "Rent a car"),
	}

	if got := (TaskFilter{}).Apply(tasks); len(got) != 3 {
		t.Fatalf("expected empty filter to match all, got %d", len(got))
	}

	if got := (TaskFilter{Query: "RENT"}).Apply(tasks); len(got) != 2 || got[0].Description != "Pay rent" {
		t.Fatalf("unexpected query match %+v", got)
	}

	normal := Normal
	before := base.Add(36 * time.Hour)
	got := TaskFilter{Priority: &normal, DueBefore: &before}.Apply(tasks)
	if len(got) != 1 || got[0].Description != "Buy milk" {
		t.Fatalf("unexpected priority/due match %+v", got)
	}

	after := base
	if got := (TaskFilter{DueAfter: &after}).Apply(tasks); len(got) != 2 {
		t.Fatalf("expected due_after to be exclusive, got %d", len(got))
	}
}
