// Package db provides the SQLite-backed configuration repository for
// the pinpoint engine. It manages the database connection and
// migrations, persists per-call-site log configurations as JSON keyed
// by call key, and adapts the repository into a fetch collaborator for
// the engine.
package db
