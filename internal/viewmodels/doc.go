// Package viewmodels holds the UI-facing state of the shelf client and the
// operations that change it.
//
// View models never draw anything. The TUI and the CLI commands both drive them
// and read their state back after each call. Side effects that depend on the
// front end (notifications, confirmation prompts, reloads, scroll locking) are
// injected through the small interfaces in ports.go.
//
// Each user action issues at most one request and every failure is terminal for
// that action. Nothing is retried.
package viewmodels
