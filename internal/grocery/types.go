// Package grocery manages the grocery type catalogue and the grocery list,
// both stored as a marker line followed by a JSON array.
package grocery

import (
	"io"
	"os"

	"github.com/Joseda-hg/lazyreminder/internal/model"
)

// TypesToken is the first line of every grocery type file.
const TypesToken = "GroceryTypeManager 2024"

const typesSchema = "types.json"

// DefaultTypes is the catalogue written when the default type file has to
// be recreated.
func DefaultTypes() []model.GroceryType {
	return []model.GroceryType{
		model.NewGroceryType("Milk, 1.5L", 17.5),
		model.NewGroceryType("Cream, 5dl", 27.5),
		model.NewGroceryType("Eggs, 10p", 34.95),
		model.NewGroceryType("Salted Butter, 500g", 54.95),
		model.NewGroceryType("Household Cheese, 1.1kg", 126.5),
		model.NewGroceryType("Bananas, 200g", 5.99),
		model.NewGroceryType("Potatoes, 1kg", 16.95),
	}
}

// TypeManager keeps grocery types in insertion order. It is not safe for
// concurrent use.
type TypeManager struct {
	types []model.GroceryType
}

func NewTypeManager() *TypeManager {
	return &TypeManager{}
}

func (m *TypeManager) Len() int {
	return len(m.types)
}

// Types returns a copy of the catalogue.
func (m *TypeManager) Types() []model.GroceryType {
	out := make([]model.GroceryType, len(m.types))
	copy(out, m.types)
	return out
}

func (m *TypeManager) Get(index int) (model.GroceryType, bool) {
	if index < 0 || index >= len(m.types) {
		return model.GroceryType{}, false
	}
	return m.types[index], true
}

func (m *TypeManager) Add(description string, cost float64) model.GroceryType {
	groceryType := model.NewGroceryType(description, cost)
	m.types = append(m.types, groceryType)
	return groceryType
}

// Remove is a no-op when index is out of range.
func (m *TypeManager) Remove(index int) bool {
	if index < 0 || index >= len(m.types) {
		return false
	}
	m.types = append(m.types[:index], m.types[index+1:]...)
	return true
}

func (m *TypeManager) Clear() {
	m.types = nil
}

// Load replaces the catalogue with the types read from r. Nothing is
// changed unless the whole input is valid.
func (m *TypeManager) Load(r io.Reader) error {
	list, err := decodeList[model.GroceryType](r, TypesToken, typesSchema)
	if err != nil {
		return err
	}
	loaded := make([]model.GroceryType, 0, len(list))
	for _, groceryType := range list {
		loaded = append(loaded, groceryType.Normalized())
	}
	m.types = loaded
	return nil
}

func (m *TypeManager) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return m.Load(f)
}

func (m *TypeManager) Save(w io.Writer) error {
	return encodeList(w, TypesToken, m.types)
}

func (m *TypeManager) SaveFile(path string) error {
	return writeFile(path, m.Save)
}

// LoadDefault loads the default type file, rewriting it with DefaultTypes
// when it is missing or unreadable. An unreadable file is first renamed with
// BackupSuffix. recovered reports whether the file was rewritten.
func (m *TypeManager) LoadDefault(path string) (recovered bool, err error) {
	loadErr := m.LoadFile(path)
	if loadErr == nil {
		return false, nil
	}
	if err := backupUnreadable(path, loadErr); err != nil {
		return false, err
	}

	template := &TypeManager{types: DefaultTypes()}
	if err := template.SaveFile(path); err != nil {
		return false, err
	}
	if err := m.LoadFile(path); err != nil {
		return false, err
	}
	return true, nil
}
