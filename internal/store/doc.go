// Package store holds the process-wide client state shared by the views: the
// authenticated session and the search overlay flag with its pending query.
//
// A single [Store] is created by the composition root and handed to every view
// model as a [SessionStore]. Views learn about changes through [Store.Subscribe]
// rather than by polling.
//
// The session is persisted to durable storage under the "token" and "user" keys.
// The store is the only writer of those keys.
package store
