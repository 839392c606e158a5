// Package ports defines the driven-port interfaces of the walkout
// engine: persistence, the appointment and field-definition sources,
// and the external rule-engine, note-analysis and image collaborators.
//
// Adapters implementing these interfaces live under pkg/adapters. The
// engine in internal/runtime depends only on this package.
package ports
