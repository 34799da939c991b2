package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/store"
	"github.com/desertthunder/shelf/internal/tasks"
	"github.com/desertthunder/shelf/internal/viewmodels"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	LibraryView
	DetailView
	ExportView
	ResultView
)

// toastTTL is how long a notification stays on screen.
const toastTTL = 4 * time.Second

// Login form input order.
const (
	inputEmail = iota
	inputPassword
	inputName
	inputGenres
)

// Deps are the collaborators the TUI drives. Bridge must be the notifier, confirmer,
// reloader and scroll lock handed to the view models and the store.
type Deps struct {
	Store        store.SessionStore
	Auth         *viewmodels.AuthViewModel
	Books        *viewmodels.BookListViewModel
	Search       *viewmodels.SearchViewModel
	Exporter     *tasks.LibraryExporter
	Bridge       *Bridge
	BookPageURL  string
	ExportDir    string
	ExportFormat formatter.Format
	Logger       *log.Logger
}

// exportRun tracks an export started from the TUI.
type exportRun struct {
	progress chan tasks.ProgressUpdate
	done     chan exportCompleteMsg
}

// Model represents the TUI application state.
type Model struct {
	ctx  context.Context
	deps Deps
	view ViewState

	width  int
	height int

	inputs []textinput.Model
	focus  int

	bookList     list.Model
	detail       string
	statusCursor int

	searchInput    textinput.Model
	resultList     list.Model
	resultsFocused bool

	pendingConfirm *confirmRequest
	toasts         []models.Notification

	export       *exportRun
	progress     tasks.ProgressUpdate
	exportResult *tasks.ExportResult
	exportErr    error

	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(nil)
	}

	m := &Model{
		ctx:     ctx,
		deps:    deps,
		view:    LoginView,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    newKeyMap(),
	}

	m.inputs = make([]textinput.Model, 4)
	for i, placeholder := range []string{"you@example.com", "password", "Your name", "fantasy, sci-fi"} {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 128
		m.inputs[i] = in
	}
	m.inputs[inputPassword].EchoMode = textinput.EchoPassword
	m.inputs[inputPassword].EchoCharacter = '•'

	m.searchInput = textinput.New()
	m.searchInput.Placeholder = "Search by title, author or ISBN"
	m.searchInput.CharLimit = 256

	m.bookList = newList("Library")
	m.resultList = newList("Results")
	return m
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

// Init starts the bridge listeners and shows the login or library view.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.deps.Bridge.waitForNotification(),
		m.deps.Bridge.waitForConfirm(),
		m.deps.Bridge.waitForReload(),
		m.spinner.Tick,
		m.start(),
	)
}

// start picks the first view from the session in the store.
func (m *Model) start() tea.Cmd {
	if !m.deps.Store.IsAuthenticated() {
		m.view = LoginView
		return m.focusInput(inputEmail)
	}

	m.view = LibraryView
	cmds := []tea.Cmd{m.loadBooks()}
	if m.deps.Store.SearchQuery() != "" {
		cmds = append(cmds, m.openSearch())
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bookList.SetSize(msg.Width-4, msg.Height-10)
		m.resultList.SetSize(msg.Width-8, msg.Height-12)
		m.searchInput.Width = msg.Width - 12
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case notificationMsg:
		n := models.Notification(msg)
		m.toasts = append(m.toasts, n)
		expire := tea.Tick(toastTTL, func(time.Time) tea.Msg { return expireNotificationMsg{id: n.ID} })
		return m, tea.Batch(m.deps.Bridge.waitForNotification(), expire)

	case expireNotificationMsg:
		m.dropToast(msg.id)
		return m, nil

	case confirmRequestMsg:
		req := confirmRequest(msg)
		m.pendingConfirm = &req
		return m, nil

	case reloadMsg:
		m.reset()
		return m, tea.Batch(m.deps.Bridge.waitForReload(), m.start())

	case booksLoadedMsg:
		m.refreshBooks()
		return m, nil

	case authFinishedMsg:
		return m, nil

	case searchFinishedMsg:
		m.refreshResults()
		return m, nil

	case bookAddedMsg:
		m.refreshResults()
		if msg.err != nil {
			return m, nil
		}
		return m, m.loadBooks()

	case statusUpdatedMsg:
		if msg.err != nil {
			m.deps.Bridge.Notify(models.NewNotification(models.NotifyError, "Failed to update book status"))
		}
		m.refreshBooks()
		return m, nil

	case bookRemovedMsg:
		if msg.err != nil && !errors.Is(msg.err, shared.ErrCancelled) {
			m.deps.Bridge.Notify(models.NewNotification(models.NotifyError, "Failed to remove book"))
		}
		m.refreshBooks()
		return m, nil

	case loggedOutMsg:
		if msg.err != nil {
			m.deps.Bridge.Notify(models.NewNotification(models.NotifyError, shared.ErrorMessage(msg.err)))
		}
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case exportCompleteMsg:
		m.exportResult = msg.result
		m.exportErr = msg.err
		m.export = nil
		m.view = ResultView
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m.updateFocused(msg)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.pendingConfirm != nil:
		return m.handleConfirmKeys(msg)
	case m.deps.Search.IsOpen():
		return m.handleSearchKeys(msg)
	}
	if open, _ := m.deps.Books.StatusModal(); open && m.view == LibraryView {
		return m.handleStatusKeys(msg)
	}

	switch m.view {
	case LoginView:
		return m.handleLoginKeys(msg)
	case LibraryView:
		return m.handleLibraryKeys(msg)
	case DetailView:
		return m.handleDetailKeys(msg)
	case ResultView:
		return m.handleResultKeys(msg)
	}
	return m, nil
}

// updateFocused forwards other messages (cursor blink, mouse) to whatever has focus.
func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.deps.Search.IsOpen():
		if m.resultsFocused {
			m.resultList, cmd = m.resultList.Update(msg)
		} else {
			m.searchInput, cmd = m.searchInput.Update(msg)
		}
	case m.view == LoginView:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	case m.view == LibraryView && !m.deps.Bridge.Locked():
		m.bookList, cmd = m.bookList.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.deps.Auth.Mode()

	switch {
	case key.Matches(msg, m.keys.switchMode):
		m.deps.Auth.ToggleMode()
		return m, m.focusInput(inputEmail)

	case key.Matches(msg, m.keys.reveal):
		if m.deps.Auth.TogglePasswordVisibility() {
			m.inputs[inputPassword].EchoMode = textinput.EchoNormal
		} else {
			m.inputs[inputPassword].EchoMode = textinput.EchoPassword
		}
		return m, nil

	case key.Matches(msg, m.keys.focus), msg.String() == "up", msg.String() == "down":
		count := m.visibleInputs(mode)
		next := m.focus + 1
		if msg.String() == "shift+tab" || msg.String() == "up" {
			next = m.focus - 1 + count
		}
		return m, m.focusInput(next % count)

	case key.Matches(msg, m.keys.enter):
		if m.deps.Auth.Form(mode).IsLoading {
			return m, nil
		}
		m.deps.Auth.Update(mode, func(f *models.FormState) {
			f.Email = m.inputs[inputEmail].Value()
			f.Password = m.inputs[inputPassword].Value()
			f.Name = m.inputs[inputName].Value()
			f.Genres = models.ParseGenres(m.inputs[inputGenres].Value())
		})
		return m, m.submitAuth(mode)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) visibleInputs(mode viewmodels.FormKind) int {
	if mode == viewmodels.RegisterForm {
		return len(m.inputs)
	}
	return inputName
}

func (m *Model) focusInput(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.prevTab), key.Matches(msg, m.keys.nextTab):
		step := 1
		if key.Matches(msg, m.keys.prevTab) {
			step = len(models.StatusOptions) - 1
		}
		m.deps.Books.SetFilter(models.StatusOptions[(filterIndex(m.deps.Books.Filter())+step)%len(models.StatusOptions)].Value)
		m.refreshBooks()
		return m, nil

	case key.Matches(msg, m.keys.search):
		return m, m.openSearch()

	case key.Matches(msg, m.keys.refresh):
		return m, m.loadBooks()

	case key.Matches(msg, m.keys.logout):
		return m, m.logout()

	case key.Matches(msg, m.keys.export):
		if m.deps.Exporter == nil {
			return m, nil
		}
		m.view = ExportView
		return m, m.startExport()
	}

	book, ok := m.selectedBook()
	if ok {
		switch {
		case key.Matches(msg, m.keys.status):
			m.deps.Books.OpenStatusModal(book.ID)
			m.statusCursor = statusIndex(book.Status)
			return m, nil

		case key.Matches(msg, m.keys.remove):
			return m, m.removeBook(book.ID)

		case key.Matches(msg, m.keys.enter):
			m.detail = formatter.RenderDescription(formatter.BookMarkdown(book), m.width-4)
			m.view = DetailView
			return m, nil

		case key.Matches(msg, m.keys.open):
			m.openBookPage(book)
			return m, nil
		}
	}

	if m.deps.Bridge.Locked() {
		return m, nil
	}
	var cmd tea.Cmd
	m.bookList, cmd = m.bookList.Update(msg)
	return m, cmd
}

func (m *Model) handleStatusKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	statuses := models.BookStatuses()

	switch {
	case key.Matches(msg, m.keys.back):
		m.deps.Books.CloseStatusModal()
	case key.Matches(msg, m.keys.up):
		m.statusCursor = (m.statusCursor - 1 + len(statuses)) % len(statuses)
	case key.Matches(msg, m.keys.down):
		m.statusCursor = (m.statusCursor + 1) % len(statuses)
	case key.Matches(msg, m.keys.enter):
		_, id := m.deps.Books.StatusModal()
		return m, m.updateStatus(id, statuses[m.statusCursor])
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch {
	case key.Matches(msg, m.keys.yes):
		answer = true
	case key.Matches(msg, m.keys.no):
		answer = false
	default:
		return m, nil
	}

	m.pendingConfirm.reply <- answer
	m.pendingConfirm = nil
	return m, m.deps.Bridge.waitForConfirm()
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.deps.Search.Close()
		m.searchInput.Reset()
		m.searchInput.Blur()
		m.resultsFocused = false
		m.refreshResults()
		return m, nil

	case key.Matches(msg, m.keys.focus):
		m.resultsFocused = !m.resultsFocused
		if m.resultsFocused {
			m.searchInput.Blur()
			return m, nil
		}
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.enter):
		if !m.resultsFocused {
			q := m.searchInput.Value()
			m.deps.Search.SetQuery(q)
			return m, m.runSearch(q)
		}
		if item, ok := m.resultList.SelectedItem().(resultItem); ok && !item.added {
			return m, m.addBook(item.result)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.resultsFocused {
		m.resultList, cmd = m.resultList.Update(msg)
	} else {
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), msg.String() == "backspace":
		m.view = LibraryView
		m.detail = ""
	case key.Matches(msg, m.keys.open):
		if book, ok := m.selectedBook(); ok {
			m.openBookPage(book)
		}
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.view = LibraryView
		m.exportResult = nil
		m.exportErr = nil
	}
	return m, nil
}

// reset drops UI state that does not survive a reload.
func (m *Model) reset() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.searchInput.Reset()
	m.resultsFocused = false
	m.detail = ""
	m.bookList.SetItems([]list.Item{})
	m.resultList.SetItems([]list.Item{})
	if m.pendingConfirm != nil {
		m.pendingConfirm.reply <- false
		m.pendingConfirm = nil
	}
}

func (m *Model) refreshBooks() {
	m.bookList.Title = m.deps.Books.Filter().Label()
	m.bookList.SetItems(bookItems(m.deps.Books.FilteredBooks()))
}

func (m *Model) refreshResults() {
	m.resultList.SetItems(resultItems(m.deps.Search.Results(), m.deps.Search.IsAdded))
}

func (m *Model) dropToast(id string) {
	kept := m.toasts[:0]
	for _, n := range m.toasts {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	m.toasts = kept
}

func (m *Model) selectedBook() (models.Book, bool) {
	item, ok := m.bookList.SelectedItem().(bookItem)
	if !ok {
		return models.Book{}, false
	}
	return item.book, true
}

func (m *Model) openBookPage(book models.Book) {
	if book.GoogleBookID == "" {
		m.deps.Bridge.Notify(models.NewNotification(models.NotifyInfo, "No catalog page for this book"))
		return
	}
	if err := shared.OpenBrowser(shared.BookPageURL(m.deps.BookPageURL, book.GoogleBookID)); err != nil {
		m.deps.Logger.Warn("failed to open browser", "error", err)
		m.deps.Bridge.Notify(models.NewNotification(models.NotifyError, "Failed to open browser"))
	}
}

func filterIndex(s models.Status) int {
	for i, opt := range models.StatusOptions {
		if opt.Value == s {
			return i
		}
	}
	return 0
}

func statusIndex(s models.Status) int {
	for i, status := range models.BookStatuses() {
		if status == s {
			return i
		}
	}
	return 0
}

func (m *Model) loadBooks() tea.Cmd {
	return func() tea.Msg {
		return booksLoadedMsg{err: m.deps.Books.Load(m.ctx)}
	}
}

func (m *Model) submitAuth(kind viewmodels.FormKind) tea.Cmd {
	return func() tea.Msg {
		return authFinishedMsg{err: m.deps.Auth.Submit(m.ctx, kind)}
	}
}

// openSearch opens the overlay through the store. A pending query searches right away, so this runs as a command.
func (m *Model) openSearch() tea.Cmd {
	m.resultsFocused = false
	m.searchInput.SetValue(m.deps.Store.SearchQuery())
	focus := m.searchInput.Focus()
	return tea.Batch(focus, func() tea.Msg {
		m.deps.Store.ToggleSearch(true)
		return searchFinishedMsg{}
	})
}

func (m *Model) runSearch(q string) tea.Cmd {
	return func() tea.Msg {
		return searchFinishedMsg{err: m.deps.Search.Search(m.ctx, q)}
	}
}

func (m *Model) addBook(r models.SearchResult) tea.Cmd {
	return func() tea.Msg {
		return bookAddedMsg{id: r.ID, err: m.deps.Search.AddBook(m.ctx, r)}
	}
}

func (m *Model) updateStatus(id string, status models.Status) tea.Cmd {
	return func() tea.Msg {
		return statusUpdatedMsg{id: id, err: m.deps.Books.UpdateStatus(m.ctx, id, status)}
	}
}

func (m *Model) removeBook(id string) tea.Cmd {
	return func() tea.Msg {
		return bookRemovedMsg{id: id, err: m.deps.Books.Remove(m.ctx, id)}
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: m.deps.Store.Logout()}
	}
}

func (m *Model) startExport() tea.Cmd {
	run := &exportRun{
		progress: make(chan tasks.ProgressUpdate, 50),
		done:     make(chan exportCompleteMsg, 1),
	}
	m.export = run
	m.progress = tasks.ProgressUpdate{}

	opts := tasks.ExportOpts{Format: m.deps.ExportFormat, OutputDir: m.deps.ExportDir}
	go func() {
		result, err := m.deps.Exporter.Export(m.ctx, run.progress, opts)
		run.done <- exportCompleteMsg{result: result, err: err}
		close(run.progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	run := m.export
	return func() tea.Msg {
		if run == nil {
			return exportCompleteMsg{}
		}

		update, ok := <-run.progress
		if !ok {
			return <-run.done
		}
		return progressUpdateMsg(update)
	}
}
