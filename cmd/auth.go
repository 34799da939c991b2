package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/store"
	"github.com/desertthunder/shelf/internal/viewmodels"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in with email and password, prompting for whatever is missing.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	return r.authenticate(ctx, cmd, viewmodels.LoginForm)
}

// AuthRegister creates an account and signs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	return r.authenticate(ctx, cmd, viewmodels.RegisterForm)
}

func (r *Runner) authenticate(ctx context.Context, cmd *cli.Command, kind viewmodels.FormKind) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	email := cmd.String("email")
	password := cmd.String("password")
	name := cmd.String("name")
	genres := cmd.String("genres")

	if r.interactive {
		if err := promptCredentials(ctx, kind, &email, &password, &name, &genres); err != nil {
			return err
		}
	}

	vm := viewmodels.NewAuthViewModel(r.books, r.store, store.ReloadFunc(r.reload), r.logger)
	vm.Update(kind, func(f *models.FormState) {
		f.Email = strings.TrimSpace(email)
		f.Password = password
		f.Name = strings.TrimSpace(name)
		f.Genres = models.ParseGenres(genres)
	})

	r.logger.Info("authenticating", "form", kind, "email", email)

	if err := vm.Submit(ctx, kind); err != nil {
		if errors.Is(err, shared.ErrValidation) {
			return err
		}
		msg := vm.Form(kind).Errors[models.FieldGeneral]
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
	}

	who := email
	if user := r.store.User(); user != nil && user.Email != "" {
		who = user.Email
	}
	if kind == viewmodels.RegisterForm {
		return r.writePlain("✓ Account created for %s\n", who)
	}
	return r.writePlain("✓ Logged in as %s\n", who)
}

// AuthLogout clears the saved session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	if !r.store.IsAuthenticated() {
		return r.writePlain("Not logged in\n")
	}

	if err := r.store.Logout(); err != nil {
		return err
	}

	r.logger.Info("logged out")
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus prints the saved session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	session := r.store.Session()
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated": session.IsAuthenticated,
			"user":          session.User,
			"api":           r.config.API.BaseURL,
		}, true)
	}

	r.writePlain("Backend: %s\n", r.config.API.BaseURL)
	if !session.IsAuthenticated {
		return r.writePlain("Authentication: ✗ Not authenticated\n")
	}

	r.writePlain("Authentication: ✓ Authenticated\n")
	if u := session.User; u != nil {
		r.writePlain("User: %s <%s>\n", u.Name, u.Email)
		if len(u.Genres) > 0 {
			r.writePlain("Genres: %s\n", strings.Join(u.Genres, ", "))
		}
	}
	return nil
}
