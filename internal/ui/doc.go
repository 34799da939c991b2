// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI drives the view models in package viewmodels:
//  1. [LoginView] : Sign in or register (ctrl+r switches form)
//  2. [LibraryView] : Browse the library by status shelf, update status, remove books
//  3. [DetailView] : Read a book's description rendered with glamour
//  4. [ExportView] : Monitor a library export
//  5. [ResultView] : Display the export summary
//
// The search overlay, status picker and confirmation prompt are drawn over the library
// whenever the view models report them open.
//
// View models run inside tea.Cmd goroutines. Their side effects (toasts, confirmations,
// reloads, scroll locking) reach the event loop through a [Bridge], whose channels are
// drained by long-lived wait commands.
package ui
