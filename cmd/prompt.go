package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/viewmodels"
)

// runForm runs a huh form. Aborting with ctrl+c maps to [shared.ErrCancelled].
func runForm(ctx context.Context, groups ...*huh.Group) error {
	form := huh.NewForm(groups...).WithShowHelp(true)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return shared.ErrCancelled
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// confirmer asks on the terminal, or answers yes when assumeYes is set.
func (r *Runner) confirmer(assumeYes bool) viewmodels.Confirmer {
	return viewmodels.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		if assumeYes {
			return true, nil
		}
		if !r.interactive {
			return false, fmt.Errorf("%w: not a terminal, pass --yes to confirm", shared.ErrMissingArgument)
		}

		var ok bool
		confirm := huh.NewConfirm().
			Title(prompt).
			Affirmative("Yes").
			Negative("No").
			Value(&ok)
		if err := runForm(ctx, huh.NewGroup(confirm)); err != nil {
			return false, err
		}
		return ok, nil
	})
}

// promptCredentials fills in any missing fields. Register also asks for a name and genres.
func promptCredentials(ctx context.Context, kind viewmodels.FormKind, email, password, name, genres *string) error {
	fields := []huh.Field{}
	if *email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Placeholder("you@example.com").Value(email))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password))
	}
	if kind == viewmodels.RegisterForm {
		if *name == "" {
			fields = append(fields, huh.NewInput().Title("Name").Value(name))
		}
		if *genres == "" {
			fields = append(fields, huh.NewInput().
				Title("Favourite genres").
				Description("Comma separated, optional").
				Value(genres))
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return runForm(ctx, huh.NewGroup(fields...))
}
