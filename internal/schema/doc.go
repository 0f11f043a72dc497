// Package schema declares the shapes of the remote tables the client
// writes to, and validates mutation payloads against them before the
// payloads are queued or sent.
//
// The row structs mirror the hosted database's column layout; they carry
// no behavior. Validation uses CUE definitions compiled once into a
// Registry, so a payload that drifted from the table shape is rejected at
// submit time instead of failing on replay hours later.
//
// Tables without a registered definition are accepted as-is: the remote
// service remains the authority for tables this client does not know.
package schema
