package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Joseda-hg/lazyreminder/internal/model"
)

func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func formatUnits(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatTaskSummary(task model.Task, now time.Time) string {
	marker := " "
	if !task.Deadline.After(now) {
		marker = "!"
	}
	return fmt.Sprintf("%s %s | %-14s | %s", marker, task.Deadline.Local().Format(deadlineLayout), task.Priority.Label(), task.Description)
}

func formatGroceryType(groceryType model.GroceryType) string {
	return fmt.Sprintf("%s | %s", groceryType.Description, formatAmount(groceryType.Cost))
}

func formatGroceryItem(item model.GroceryItem) string {
	return fmt.Sprintf("%s | %s x %s = %s", item.Description, formatAmount(item.Cost), formatUnits(item.Units), formatAmount(item.TotalCost()))
}

// formatFileLabel shortens path for the header and marks unsaved changes.
func formatFileLabel(path string, dirty bool) string {
	label := "untitled"
	if path != "" {
		label = filepath.Base(path)
	}
	if dirty {
		label += "*"
	}
	return label
}
