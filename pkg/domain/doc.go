// Package domain contains the core types of the walkout lifecycle:
// the Walkout aggregate, its three submission sections, the status and
// owner enumerations, field identifiers, and the error taxonomy shared
// by the engine and its adapters.
//
// Everything in this package is plain data. The rules that act on it
// (dependency resolution, validation, status transitions) live in
// internal/runtime.
package domain
