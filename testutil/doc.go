// Package testutil provides in-memory fakes for deterministic tests,
// most importantly a scriptable VectorSearch backend.
package testutil
