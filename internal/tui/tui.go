package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/lazyreminder/internal/db"
	"github.com/Joseda-hg/lazyreminder/internal/grocery"
	"github.com/Joseda-hg/lazyreminder/internal/tasks"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewTasks   = "tasks"
	viewList    = "groceryList"
	viewTypes   = "groceryTypes"
	viewForm    = "form"
	viewConfirm = "confirm"
	viewPath    = "path"
	viewHelp    = "help"
)

const clockInterval = 30 * time.Second

// Options wires the UI to already loaded collections. Snapshots and Logger
// may be nil.
type Options struct {
	Tasks            *tasks.Store
	Types            *grocery.TypeManager
	Items            *grocery.ItemManager
	TasksPath        string
	GroceryTypesPath string
	GroceryListPath  string
	Snapshots        *db.Store
	Logger           *log.Logger
	Status           string
}

type UI struct {
	tasks     *tasks.Store
	types     *grocery.TypeManager
	items     *grocery.ItemManager
	snapshots *db.Store
	logger    *log.Logger
	gui       *gocui.Gui

	paths map[string]string
	dirty map[string]bool

	selectedTask int
	selectedItem int
	selectedType int
	focus        string

	form       *formState
	formEditor *formEditor
	pathEditor *pathEditor
	confirm    *confirmState
	pathPrompt *pathState
	helpActive bool
	status     string

	now func() time.Time
}

type formEditor struct {
	ui *UI
}

type pathEditor struct {
	ui *UI
}

func newUI(opts Options) *UI {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	taskStore := opts.Tasks
	if taskStore == nil {
		taskStore = tasks.NewStore()
	}
	types := opts.Types
	if types == nil {
		types = grocery.NewTypeManager()
	}
	items := opts.Items
	if items == nil {
		items = grocery.NewItemManager()
	}

	ui := &UI{
		tasks:     taskStore,
		types:     types,
		items:     items,
		snapshots: opts.Snapshots,
		logger:    logger,
		paths: map[string]string{
			viewTasks: opts.TasksPath,
			viewList:  opts.GroceryListPath,
			viewTypes: opts.GroceryTypesPath,
		},
		dirty:  make(map[string]bool),
		focus:  viewTasks,
		status: opts.Status,
		now:    time.Now,
	}
	ui.formEditor = &formEditor{ui: ui}
	ui.pathEditor = &pathEditor{ui: ui}
	return ui
}

func Run(opts Options) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(opts)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go ui.tickClock(gui, done)

	if err := gui.MainLoop(); err != nil && !goerrors.Is(err, gocui.ErrQuit) {
		return err
	}

	return nil
}

// tickClock redraws the header clock and the overdue markers.
func (u *UI) tickClock(gui *gocui.Gui, done <-chan struct{}) {
	ticker := time.NewTicker(clockInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			gui.Update(func(*gocui.Gui) error { return nil })
		}
	}
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'q', gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'a', gocui.ModNone, u.add); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'e', gocui.ModNone, u.edit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'd', gocui.ModNone, u.remove); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'n', gocui.ModNone, u.newFile); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'o', gocui.ModNone, u.open); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 's', gocui.ModNone, u.save); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'S', gocui.ModNone, u.saveAs); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'r', gocui.ModNone, u.reload); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '?', gocui.ModNone, u.toggleHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyTab, gocui.ModNone, u.switchFocus); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '1', gocui.ModNone, u.focusTasks); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '2', gocui.ModNone, u.focusList); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '3', gocui.ModNone, u.focusTypes); err != nil {
		return err
	}
	for _, name := range allPanes {
		if err := gui.SetKeybinding(name, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'j', gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'k', gocui.ModNone, u.moveUp); err != nil {
			return err
		}
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitFormNow); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyCtrlJ, gocui.ModNone, u.submitFormNow); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewConfirm, 'y', gocui.ModNone, u.confirmYes); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewConfirm, 'n', gocui.ModNone, u.confirmNo); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewConfirm, gocui.KeyEsc, gocui.ModNone, u.confirmCancel); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewPath, gocui.KeyEnter, gocui.ModNone, u.submitPathNow); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewPath, gocui.KeyEsc, gocui.ModNone, u.cancelPath); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, gocui.KeyEsc, gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, '?', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	for _, name := range allPanes {
		viewName := name
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewName, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, viewName, opts)
		}}); err != nil {
			return err
		}
	}
	if err := u.bindMouseScroll(gui); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	layout := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX1 := layout.leftWidth - 1
	rightX0 := min(leftX1+1, maxX-1)
	rightX1 := maxX - 1
	listY1 := bodyTop + layout.listHeight - 1

	tasksView, err := gui.SetView(viewTasks, 0, bodyTop, leftX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tasksView.Title = "1 Tasks"
	}
	applyViewStyle(tasksView, u.focus == viewTasks, true)
	u.renderTasks(tasksView)

	listView, err := gui.SetView(viewList, rightX0, bodyTop, rightX1, listY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	listView.Title = "2 Grocery list (total " + formatAmount(u.items.TotalCost()) + ")"
	applyViewStyle(listView, u.focus == viewList, true)
	u.renderItems(listView)

	typesView, err := gui.SetView(viewTypes, rightX0, listY1+1, rightX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		typesView.Title = "3 Grocery types"
		typesView.TitleColor = gocui.ColorYellow
	}
	applyViewStyle(typesView, u.focus == viewTypes, true)
	u.renderTypes(typesView)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.pathPrompt != nil {
		if err := u.showPath(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewPath)
	}

	if u.confirm != nil {
		if err := u.showConfirm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewConfirm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if !u.inputActive() {
		if current := gui.CurrentView(); current == nil || current.Name() != u.focus {
			_, _ = gui.SetCurrentView(u.focus)
		}
	}

	gui.Cursor = u.form != nil || u.pathPrompt != nil

	return nil
}

type layout struct {
	leftWidth  int
	listHeight int
	typeHeight int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width, 40)
	safeHeight := max(height, 8)

	leftWidth := safeWidth * 3 / 5
	if leftWidth < 30 {
		leftWidth = 30
	}
	if leftWidth > safeWidth-20 {
		leftWidth = safeWidth / 2
	}

	listHeight := int(float64(safeHeight) * 0.55)
	if listHeight < 4 {
		listHeight = 4
	}
	typeHeight := safeHeight - listHeight
	if typeHeight < 4 {
		typeHeight = 4
		listHeight = max(safeHeight-typeHeight, 4)
	}

	return layout{
		leftWidth:  leftWidth,
		listHeight: listHeight,
		typeHeight: typeHeight,
	}
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	fmt.Fprintf(view, "Tasks: %s | List: %s | Types: %s | %s",
		formatFileLabel(u.paths[viewTasks], u.dirty[viewTasks]),
		formatFileLabel(u.paths[viewList], u.dirty[viewList]),
		formatFileLabel(u.paths[viewTypes], u.dirty[viewTypes]),
		u.now().Format("2006-01-02 15:04"),
	)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "a add | e edit task | d delete | n new | o open | s save | S save as | r reload")
	fmt.Fprintln(view, "tab/1-3 panes | j/k move | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTasks(view *gocui.View) {
	view.Clear()
	now := u.now()
	list := u.tasks.Tasks()
	focused := u.focus == viewTasks
	for i, task := range list {
		fmt.Fprintf(view, "%s %s\n", selectionPrefix(i == u.selectedTask, focused), formatTaskSummary(task, now))
	}
	if focused {
		view.SetCursor(0, min(u.selectedTask, len(list)-1))
	}
}

func (u *UI) renderItems(view *gocui.View) {
	view.Clear()
	list := u.items.Items()
	focused := u.focus == viewList
	for i, item := range list {
		fmt.Fprintf(view, "%s %s\n", selectionPrefix(i == u.selectedItem, focused), formatGroceryItem(item))
	}
	if focused {
		view.SetCursor(0, min(u.selectedItem, len(list)-1))
	}
}

func (u *UI) renderTypes(view *gocui.View) {
	view.Clear()
	list := u.types.Types()
	focused := u.focus == viewTypes
	for i, groceryType := range list {
		fmt.Fprintf(view, "%s %s\n", selectionPrefix(i == u.selectedType, focused), formatGroceryType(groceryType))
	}
	if focused {
		view.SetCursor(0, min(u.selectedType, len(list)-1))
	}
}

func selectionPrefix(selected, focused bool) string {
	if !selected {
		return " "
	}
	if focused {
		return ">"
	}
	return "*"
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	switch viewName {
	case viewTasks:
		u.selectedTask = clamp(row, u.tasks.Len())
	case viewList:
		u.selectedItem = clamp(row, u.items.Len())
	case viewTypes:
		u.selectedType = clamp(row, u.types.Len())
	default:
		return nil
	}
	return u.setFocus(gui, viewName)
}

func (u *UI) bindMouseScroll(gui *gocui.Gui) error {
	for _, name := range allPanes {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewTasks:
		return u.setFocus(gui, viewList)
	case viewList:
		return u.setFocus(gui, viewTypes)
	default:
		return u.setFocus(gui, viewTasks)
	}
}

func (u *UI) focusTasks(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewTasks)
}

func (u *UI) focusList(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewList)
}

func (u *UI) focusTypes(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewTypes)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	u.focus = name
	if gui != nil {
		_, _ = gui.SetCurrentView(name)
	}
	return nil
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewList:
		u.selectedItem = clamp(u.selectedItem+1, u.items.Len())
	case viewTypes:
		u.selectedType = clamp(u.selectedType+1, u.types.Len())
	default:
		u.selectedTask = clamp(u.selectedTask+1, u.tasks.Len())
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewList:
		u.selectedItem = clamp(u.selectedItem-1, u.items.Len())
	case viewTypes:
		u.selectedType = clamp(u.selectedType-1, u.types.Len())
	default:
		u.selectedTask = clamp(u.selectedTask-1, u.tasks.Len())
	}
	return nil
}

func (u *UI) add(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.beginAdd()
}

func (u *UI) edit(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.beginEdit()
}

func (u *UI) remove(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.beginDelete()
}

func (u *UI) newFile(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.beginNew()
}

func (u *UI) open(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.beginOpen()
}

func (u *UI) save(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.beginSave()
}

func (u *UI) saveAs(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.beginSaveAs()
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.beginReload()
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	if u.form != nil || u.pathPrompt != nil || u.confirm != nil {
		return nil
	}
	u.helpActive = false
	return u.beginQuit()
}

func (u *UI) toggleHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	if gui != nil {
		_ = gui.DeleteView(viewHelp)
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 16
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) showConfirm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(50, len([]rune(u.confirm.message))+4)
	width = min(width, max(maxX-2, 10))
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewConfirm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Confirm"
		view.Wrap = true
		view.FrameColor = gocui.ColorYellow
	}
	view.Clear()
	fmt.Fprint(view, u.confirm.message)
	_, _ = gui.SetCurrentView(viewConfirm)
	return nil
}

func (u *UI) confirmYes(_ *gocui.Gui, _ *gocui.View) error {
	return u.answerConfirm(true)
}

func (u *UI) confirmNo(_ *gocui.Gui, _ *gocui.View) error {
	return u.answerConfirm(false)
}

func (u *UI) confirmCancel(_ *gocui.Gui, _ *gocui.View) error {
	u.confirm = nil
	return nil
}

func (u *UI) showPath(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(50, maxX/2)
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewPath, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = false
	}
	view.Title = u.pathPrompt.title
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.pathEditor
	u.renderPath(view)
	_, _ = gui.SetCurrentView(viewPath)
	return nil
}

func (u *UI) renderPath(view *gocui.View) {
	if u.pathPrompt == nil || view == nil {
		return
	}
	view.Clear()
	fmt.Fprint(view, u.pathPrompt.value)
	view.SetCursor(len([]rune(u.pathPrompt.value)), 0)
}

func (u *UI) submitPathNow(_ *gocui.Gui, _ *gocui.View) error {
	return u.submitPath()
}

func (u *UI) cancelPath(_ *gocui.Gui, _ *gocui.View) error {
	u.pathPrompt = nil
	return nil
}

func (e *pathEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.pathPrompt == nil || view == nil {
		return false
	}
	ui.pathPrompt.value = editValue(ui.pathPrompt.value, key, ch, mod)
	ui.renderPath(view)
	return true
}

func (u *UI) showForm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(8, max(5, maxY/2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = u.form.title()
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) submitFormNow(_ *gocui.Gui, _ *gocui.View) error {
	return u.submitForm()
}

func (u *UI) cancelForm(_ *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	u.status = ""
	return nil
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	current := u.form.fields[u.form.index]
	cursorX := len([]rune(current.Label+": ")) + len([]rune(current.Value)) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	form := ui.form
	field := &form.fields[form.index]

	if form.isCycleField(form.index) {
		delta := 0
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			delta = 1
		case gocui.KeyArrowLeft:
			delta = -1
		}
		if delta != 0 {
			if form.kind == formGroceryItem {
				form.cycleType(ui.types.Types(), delta)
			} else {
				field.Value = cyclePriority(field.Value, delta)
			}
		}
		ui.renderForm(view)
		return true
	}

	field.Value = editValue(field.Value, key, ch, mod)
	ui.renderForm(view)
	return true
}

// editValue applies a single key press to a one line text value.
func editValue(value string, key gocui.Key, ch rune, mod gocui.Modifier) string {
	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(value)
		if len(runes) > 0 {
			value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		value += " "
	case gocui.KeyCtrlU:
		value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		value += string(ch)
	}
	return value
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.confirm != nil || u.pathPrompt != nil || u.helpActive
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  Tab cycle panes | 1 Tasks | 2 Grocery list | 3 Grocery types",
		"  j/k or arrows move selection",
		"  mouse click to focus/select, wheel scrolls",
		"",
		"Actions (focused pane):",
		"  a add | d delete | e edit task",
		"  n new file | o open file | r reload from disk",
		"  s save | S save as",
		"",
		"Forms:",
		"  tab/arrows next field | enter save | esc cancel",
		"  space/left/right cycle priority or grocery type",
		"",
		"Tasks marked ! are past their deadline.",
		"? or esc close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
