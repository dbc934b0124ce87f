package grocery

import (
	"io"
	"os"

	"github.com/Joseda-hg/lazyreminder/internal/model"
)

// ItemsToken is the first line of every grocery list file.
const ItemsToken = "GroceryItemManager 2024"

const itemsSchema = "items.json"

// ItemManager keeps the grocery list in insertion order. It is not safe for
// concurrent use.
type ItemManager struct {
	items []model.GroceryItem
}

func NewItemManager() *ItemManager {
	return &ItemManager{}
}

func (m *ItemManager) Len() int {
	return len(m.items)
}

// Items returns a copy of the list.
func (m *ItemManager) Items() []model.GroceryItem {
	out := make([]model.GroceryItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *ItemManager) Get(index int) (model.GroceryItem, bool) {
	if index < 0 || index >= len(m.items) {
		return model.GroceryItem{}, false
	}
	return m.items[index], true
}

func (m *ItemManager) Add(description string, cost, units float64) model.GroceryItem {
	item := model.NewGroceryItem(description, cost, units)
	m.items = append(m.items, item)
	return item
}

// AddType puts units of a catalogue entry on the list.
func (m *ItemManager) AddType(groceryType model.GroceryType, units float64) model.GroceryItem {
	return m.Add(groceryType.Description, groceryType.Cost, units)
}

// Remove is a no-op when index is out of range.
func (m *ItemManager) Remove(index int) bool {
	if index < 0 || index >= len(m.items) {
		return false
	}
	m.items = append(m.items[:index], m.items[index+1:]...)
	return true
}

func (m *ItemManager) Clear() {
	m.items = nil
}

// TotalCost sums cost times units over the whole list.
func (m *ItemManager) TotalCost() float64 {
	var total float64
	for _, item := range m.items {
		total += item.TotalCost()
	}
	return total
}

// Load replaces the list with the items read from r. Nothing is changed
// unless the whole input is valid.
func (m *ItemManager) Load(r io.Reader) error {
	list, err := decodeList[model.GroceryItem](r, ItemsToken, itemsSchema)
	if err != nil {
		return err
	}
	loaded := make([]model.GroceryItem, 0, len(list))
	for _, item := range list {
		loaded = append(loaded, item.Normalized())
	}
	m.items = loaded
	return nil
}

func (m *ItemManager) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return m.Load(f)
}

func (m *ItemManager) Save(w io.Writer) error {
	return encodeList(w, ItemsToken, m.items)
}

func (m *ItemManager) SaveFile(path string) error {
	return writeFile(path, m.Save)
}

// LoadDefault loads the default list file, recreating it empty when it is
// missing or unreadable. An unreadable file is first renamed with
// BackupSuffix. recovered reports whether the file was recreated.
func (m *ItemManager) LoadDefault(path string) (recovered bool, err error) {
	loadErr := m.LoadFile(path)
	if loadErr == nil {
		return false, nil
	}
	if err := backupUnreadable(path, loadErr); err != nil {
		return false, err
	}

	if err := NewItemManager().SaveFile(path); err != nil {
		return false, err
	}
	if err := m.LoadFile(path); err != nil {
		return false, err
	}
	return true, nil
}
