package models

import "strings"

// Form field keys used in [FieldErrors].
const (
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldName     = "name"
	FieldGeneral  = "general"
)

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

// Has reports whether field has a message.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Empty reports whether there are no messages.
func (e FieldErrors) Empty() bool { return len(e) == 0 }

// Clone returns an independent copy.
func (e FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// FormState holds the fields of a login or registration form.
//
// Errors is recomputed wholesale on every validation pass.
type FormState struct {
	Email     string
	Password  string
	Name      string
	Genres    []string
	Errors    FieldErrors
	IsLoading bool
}

// NewFormState returns an empty form.
func NewFormState() *FormState {
	return &FormState{Errors: FieldErrors{}}
}

// ParseGenres splits a comma separated genre list, dropping blanks.
func ParseGenres(v string) []string {
	genres := []string{}
	for _, g := range strings.Split(v, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}
