package ui

import (
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/tasks"
)

// booksLoadedMsg reports the end of a library fetch. State lives in the view model.
type booksLoadedMsg struct{ err error }

// authFinishedMsg reports the end of a login or registration.
type authFinishedMsg struct{ err error }

// searchFinishedMsg reports the end of a search or of opening the overlay.
type searchFinishedMsg struct{ err error }

type bookAddedMsg struct {
	id  string
	err error
}

type statusUpdatedMsg struct {
	id  string
	err error
}

type bookRemovedMsg struct {
	id  string
	err error
}

type loggedOutMsg struct{ err error }

type notificationMsg models.Notification

type expireNotificationMsg struct{ id string }

type confirmRequestMsg confirmRequest

type reloadMsg struct{}

type progressUpdateMsg tasks.ProgressUpdate

type exportCompleteMsg struct {
	result *tasks.ExportResult
	err    error
}
