package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	DownloadCovers
	WriteShelves
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case DownloadCovers:
		return "download_covers"
	case WriteShelves:
		return "write_shelves"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingLibraryUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    0,
		Total:   1,
		Message: "Fetching library...",
	}
}

func fetchedLibraryUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d books", count),
		Data:    count,
	}
}

func coverDownloadedUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadCovers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ cover: %s", step, total, title),
	}
}

func coverFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadCovers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ cover: %s: %v", step, total, title, err),
	}
}

func shelfWrittenUpdate(step, total int, res ShelfResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteShelves,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d books)", step, total, res.Label, res.Count),
		Data:    res,
	}
}

func shelfFailedUpdate(step, total int, res ShelfResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteShelves,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, res.Label, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written: %s", path),
	}
}
