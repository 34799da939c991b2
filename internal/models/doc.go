// Package models defines the data exchanged between the shelf client, its backend and its views.
//
// The package contains three groups of types:
//
// 1. Library entities returned by the backend
//   - [Book] : An entry in the user's library with a reading [Status]
//   - [NewBook] : Payload for adding a catalog volume to the library
//
// 2. Catalog types derived from search responses
//   - [CatalogVolume] : A search hit as decoded from the backend (flat or volumeInfo shape)
//   - [SearchResult] : A volume shaped for display, with defaults filled in
//
// 3. Client state
//   - [Session] : Token and user profile persisted in durable storage
//   - [FormState] : Ephemeral login/registration form fields with [FieldErrors]
//   - [Notification] : Transient success/error message shown to the user
package models
