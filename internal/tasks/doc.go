// Package tasks runs long library operations with progress reporting.
//
// # Library Export
//
// [LibraryExporter.Export] writes the user's library to disk:
//
//  1. Fetches every book from the backend
//  2. Optionally downloads cover images through a rate limited worker pool
//  3. Writes one file per status shelf (to-read, reading, completed, dnf) in the chosen format
//  4. Writes export_manifest.json summarizing the run
//
// A failing cover download or shelf write is recorded in the result and does not stop the export.
//
// # Progress Reporting
//
// All operations accept an optional progress channel. Updates are sent with select and default,
// so a slow or absent reader never blocks the export.
package tasks
