package ui

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// confirmRequest is a pending yes/no question. The answer is sent on reply.
type confirmRequest struct {
	prompt string
	reply  chan bool
}

// Bridge carries side effects from view models, running in commands, back into the bubbletea loop.
//
// It implements the notifier, confirmer, reloader and scroll lock the view models expect.
type Bridge struct {
	notes    chan models.Notification
	confirms chan confirmRequest
	reloads  chan struct{}
	locked   atomic.Bool
}

// NewBridge creates a bridge. Notifications beyond the buffer are dropped.
func NewBridge() *Bridge {
	return &Bridge{
		notes:    make(chan models.Notification, 16),
		confirms: make(chan confirmRequest),
		reloads:  make(chan struct{}, 1),
	}
}

// Notify queues a toast without blocking.
func (b *Bridge) Notify(n models.Notification) {
	select {
	case b.notes <- n:
	default:
	}
}

// Confirm shows the prompt in the TUI and waits for an answer or ctx.
func (b *Bridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := confirmRequest{prompt: prompt, reply: make(chan bool, 1)}

	select {
	case b.confirms <- req:
	case <-ctx.Done():
		return false, shared.ErrCancelled
	}

	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, shared.ErrCancelled
	}
}

// Reload asks the TUI to rebuild its state from storage. Repeated requests collapse into one.
func (b *Bridge) Reload() {
	select {
	case b.reloads <- struct{}{}:
	default:
	}
}

func (b *Bridge) Lock()        { b.locked.Store(true) }
func (b *Bridge) Unlock()      { b.locked.Store(false) }
func (b *Bridge) Locked() bool { return b.locked.Load() }

func (b *Bridge) waitForNotification() tea.Cmd {
	return func() tea.Msg {
		return notificationMsg(<-b.notes)
	}
}

func (b *Bridge) waitForConfirm() tea.Cmd {
	return func() tea.Msg {
		return confirmRequestMsg(<-b.confirms)
	}
}

func (b *Bridge) waitForReload() tea.Cmd {
	return func() tea.Msg {
		<-b.reloads
		return reloadMsg{}
	}
}
