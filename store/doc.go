// Package store provides CRUD over named retrieval configurations.
//
// Two implementations share one contract: an in-memory map store (the
// minimal viable default) and a gorm-backed persistent store. Update and
// delete are idempotent: unknown ids return false, never an error, so admin
// tooling can retry blindly.
package store
