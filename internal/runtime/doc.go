// Package runtime is the walkout lifecycle engine: the derived
// calculation pass, the field dependency resolver, the per-section
// validation rules, the status transition machine, the on-hold
// escalation protocol and the submission orchestrator that sequences
// them.
//
// Every pass except persistence is a pure function over FieldSet and
// Walkout values. The orchestrator works on clones, so a failed
// submission never leaves a half-applied aggregate behind.
package runtime
