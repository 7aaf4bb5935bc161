// Package domain defines the core data structures of the pinpoint engine.
// It contains the log point configuration model and its parsing rules,
// the validation result types produced by the static safety analyzer,
// and the repository interface that defines the contract for
// configuration persistence.
//
// By defining interfaces for repositories, the domain package remains
// independent of the data storage technology; the db package provides
// the SQLite-backed implementation.
package domain
