// Package database provides the PostgreSQL connection pool.
//
// The flipper keeps two small tables there: bot_state, holding the last
// accepted signal, and transitions, the per-flip journal. Both are owned by
// the store package; this package only builds and opens the pool.
package database
