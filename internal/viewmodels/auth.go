package viewmodels

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/store"
)

// FormKind selects one of the two auth forms.
type FormKind string

const (
	LoginForm    FormKind = "login"
	RegisterForm FormKind = "register"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 8

// Validation messages.
const (
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid email format"
	MsgPasswordRequired = "Password is required"
	MsgPasswordShort    = "Password must be at least 8 characters"
	MsgNameRequired     = "Name is required"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthViewModel holds the login and registration forms.
type AuthViewModel struct {
	api      AuthAPI
	store    store.SessionStore
	reloader store.Reloader
	logger   *log.Logger

	mu           sync.Mutex
	forms        map[FormKind]*models.FormState
	mode         FormKind
	showPassword bool
}

// NewAuthViewModel creates both forms empty with the login form active.
func NewAuthViewModel(api AuthAPI, s store.SessionStore, reloader store.Reloader, logger *log.Logger) *AuthViewModel {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &AuthViewModel{
		api:      api,
		store:    s,
		reloader: reloader,
		logger:   logger,
		forms: map[FormKind]*models.FormState{
			LoginForm:    models.NewFormState(),
			RegisterForm: models.NewFormState(),
		},
		mode: LoginForm,
	}
}

func (vm *AuthViewModel) form(kind FormKind) *models.FormState {
	f, ok := vm.forms[kind]
	if !ok {
		panic(fmt.Sprintf("viewmodels: unknown form %q", kind))
	}
	return f
}

// Form returns a snapshot of the form. The snapshot does not track later changes.
func (vm *AuthViewModel) Form(kind FormKind) models.FormState {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	f := *vm.form(kind)
	f.Errors = f.Errors.Clone()
	f.Genres = append([]string(nil), f.Genres...)
	return f
}

// Update edits the form's fields. Errors and loading state are not meant to be edited here.
func (vm *AuthViewModel) Update(kind FormKind, edit func(f *models.FormState)) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	edit(vm.form(kind))
}

// Mode returns the active form.
func (vm *AuthViewModel) Mode() FormKind {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.mode
}

// ToggleMode switches between login and registration.
func (vm *AuthViewModel) ToggleMode() FormKind {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.mode == LoginForm {
		vm.mode = RegisterForm
	} else {
		vm.mode = LoginForm
	}
	return vm.mode
}

func (vm *AuthViewModel) ShowPassword() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.showPassword
}

func (vm *AuthViewModel) TogglePasswordVisibility() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.showPassword = !vm.showPassword
	return vm.showPassword
}

// ValidateForm recomputes the form's errors from scratch and reports whether there are none.
func (vm *AuthViewModel) ValidateForm(kind FormKind) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	f := vm.form(kind)
	f.Errors = validate(kind, f)
	return f.Errors.Empty()
}

func validate(kind FormKind, f *models.FormState) models.FieldErrors {
	errs := models.FieldErrors{}

	switch {
	case f.Email == "":
		errs[models.FieldEmail] = MsgEmailRequired
	case !emailPattern.MatchString(f.Email):
		errs[models.FieldEmail] = MsgEmailInvalid
	}

	switch {
	case f.Password == "":
		errs[models.FieldPassword] = MsgPasswordRequired
	case utf8.RuneCountInString(f.Password) < MinPasswordLength:
		errs[models.FieldPassword] = MsgPasswordShort
	}

	if kind == RegisterForm && f.Name == "" {
		errs[models.FieldName] = MsgNameRequired
	}
	return errs
}

// Submit validates the form and sends it. An invalid form returns a [shared.ValidationError] without any request.
//
// On success the session is saved through the store and the reloader runs. On failure the
// message is kept under the "general" field. The loading flag is cleared on every exit.
func (vm *AuthViewModel) Submit(ctx context.Context, kind FormKind) error {
	vm.mu.Lock()
	f := vm.form(kind)
	f.Errors = validate(kind, f)
	if !f.Errors.Empty() {
		err := &shared.ValidationError{Fields: f.Errors.Clone()}
		vm.mu.Unlock()
		return err
	}
	if f.IsLoading {
		vm.mu.Unlock()
		return fmt.Errorf("%w: %s already in progress", shared.ErrInvalidInput, kind)
	}
	f.IsLoading = true
	f.Errors = models.FieldErrors{}
	email, password, name := f.Email, f.Password, f.Name
	genres := append([]string{}, f.Genres...)
	vm.mu.Unlock()

	defer func() {
		vm.mu.Lock()
		f.IsLoading = false
		vm.mu.Unlock()
	}()

	var (
		result *models.AuthResult
		err    error
	)
	switch kind {
	case LoginForm:
		result, err = vm.api.Login(ctx, models.Credentials{Email: email, Password: password})
	case RegisterForm:
		result, err = vm.api.Register(ctx, models.Registration{Email: email, Password: password, Name: name, Genres: genres})
	}
	if err == nil {
		user := result.User
		if user == nil {
			user = &models.UserProfile{Email: email, Name: name, Genres: genres}
		}
		err = vm.store.SetSession(result.Token, user)
	}

	if err != nil {
		vm.logger.Error("auth failed", "form", kind, "error", err)
		vm.mu.Lock()
		f.Errors[models.FieldGeneral] = shared.ErrorMessage(err)
		vm.mu.Unlock()
		return err
	}

	vm.logger.Info("authenticated", "form", kind, "email", email)
	if vm.reloader != nil {
		vm.reloader.Reload()
	}
	return nil
}
