package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/tasks"
	"github.com/desertthunder/shelf/internal/viewmodels"
)

// View renders the UI based on the current view state. Overlays take precedence over the view underneath.
func (m *Model) View() string {
	var body string
	switch {
	case m.pendingConfirm != nil:
		body = m.renderConfirm()
	case m.deps.Search.IsOpen():
		body = m.renderSearch()
	case m.view == LibraryView && m.statusModalOpen():
		body = m.renderStatusModal()
	default:
		switch m.view {
		case LoginView:
			body = m.renderLogin()
		case LibraryView:
			body = m.renderLibrary()
		case DetailView:
			body = m.renderDetail()
		case ExportView:
			body = m.renderExport()
		case ResultView:
			body = m.renderResult()
		}
	}

	if toasts := m.renderToasts(); toasts != "" {
		return body + "\n\n" + toasts
	}
	return body
}

func (m *Model) statusModalOpen() bool {
	open, _ := m.deps.Books.StatusModal()
	return open
}

func (m *Model) renderToasts() string {
	lines := make([]string, 0, len(m.toasts))
	for _, n := range m.toasts {
		lines = append(lines, styles.notification(n))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderLogin() string {
	mode := m.deps.Auth.Mode()
	form := m.deps.Auth.Form(mode)

	title := "Sign in"
	if mode == viewmodels.RegisterForm {
		title = "Create an account"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	labels := []string{"Email", "Password", "Name", "Favourite genres"}
	fields := []string{models.FieldEmail, models.FieldPassword, models.FieldName, ""}
	for i := 0; i < m.visibleInputs(mode); i++ {
		b.WriteString(styles.field.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := form.Errors[fields[i]]; ok && fields[i] != "" {
			b.WriteString(styles.err.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if msg, ok := form.Errors[models.FieldGeneral]; ok {
		b.WriteString(styles.err.Render(msg))
		b.WriteString("\n\n")
	}
	if form.IsLoading {
		b.WriteString(fmt.Sprintf("%s Submitting...\n\n", m.spinner.View()))
	}

	help := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.focus, m.keys.switchMode, m.keys.reveal})
	b.WriteString(styles.help.Render(help))
	return b.String()
}

func (m *Model) renderTabs() string {
	counts := m.deps.Books.CountByStatus()
	active := m.deps.Books.Filter()

	tabs := make([]string, 0, len(models.StatusOptions))
	for _, opt := range models.StatusOptions {
		label := fmt.Sprintf("%s %s (%d)", opt.Icon, opt.Label, counts[opt.Value])
		if opt.Value == active {
			tabs = append(tabs, styles.activeTab.Render(label))
		} else {
			tabs = append(tabs, styles.tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderLibrary() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch {
	case m.deps.Books.IsLoading():
		b.WriteString(fmt.Sprintf("%s Loading your library...\n", m.spinner.View()))
	case m.deps.Books.Err() != nil:
		b.WriteString(styles.err.Render("Failed to load books. Press r to retry."))
		b.WriteString("\n")
	case len(m.bookList.Items()) == 0:
		b.WriteString(styles.help.Render("No books here yet. Press / to search the catalog."))
		b.WriteString("\n")
	default:
		b.WriteString(m.bookList.View())
		b.WriteString("\n")
	}

	help := m.help.ShortHelpView([]key.Binding{
		m.keys.nextTab, m.keys.search, m.keys.status, m.keys.remove,
		m.keys.enter, m.keys.export, m.keys.logout, m.keys.quit,
	})
	b.WriteString("\n")
	b.WriteString(help)
	return b.String()
}

func (m *Model) renderStatusModal() string {
	_, id := m.deps.Books.StatusModal()
	book, _ := m.deps.Books.Book(id)

	var b strings.Builder
	b.WriteString(styles.title.Render("Update status"))
	b.WriteString("\n")
	b.WriteString(book.Title)
	b.WriteString("\n\n")

	for i, status := range models.BookStatuses() {
		cursor := "  "
		if i == m.statusCursor {
			cursor = "> "
		}
		line := cursor + m.deps.Books.StatusLabel(status)
		if status == book.Status {
			line += styles.help.Render(" (current)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.back}))
	return styles.modal.Render(b.String())
}

func (m *Model) renderConfirm() string {
	body := fmt.Sprintf("%s\n\n%s", m.pendingConfirm.prompt, m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
	return styles.modal.Render(body)
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Search books"))
	b.WriteString("\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	switch {
	case m.deps.Search.IsLoading():
		b.WriteString(fmt.Sprintf("%s Searching...\n", m.spinner.View()))
	case len(m.resultList.Items()) == 0 && m.deps.Search.Query() != "":
		b.WriteString(styles.help.Render("No results"))
		b.WriteString("\n")
	case len(m.resultList.Items()) > 0:
		b.WriteString(m.resultList.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.focus, m.keys.back}))
	return styles.modal.Render(b.String())
}

func (m *Model) renderDetail() string {
	help := m.help.ShortHelpView([]key.Binding{m.keys.open, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s", m.detail, help)
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting library")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchLibrary:
		phase = "Fetching library..."
	case tasks.DownloadCovers:
		phase = fmt.Sprintf("Downloading covers (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.WriteShelves:
		phase = fmt.Sprintf("Writing shelves (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.WriteManifest:
		phase = "Writing manifest..."
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s", title, m.spinner.View(), phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})

	if m.exportErr != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v", m.exportErr)) + "\n\n" + helpView
	}
	if m.exportResult == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Export Complete!")
	info := fmt.Sprintf("\nBooks: %d\nFormat: %s\nDirectory: %s",
		m.exportResult.TotalBooks, m.exportResult.Format, m.exportResult.OutputDirectory)

	var failed string
	if n := m.exportResult.Failed(); n > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("Failed to write %d shelves:", n))
		for _, s := range m.exportResult.Shelves {
			if !s.Success {
				failed += fmt.Sprintf("\n  • %s: %s", s.Label, s.Error)
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
