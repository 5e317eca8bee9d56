// Package store keeps the flipper's durable state.
//
// Two backends share one method set:
//   - Postgres: bot_state (one row per record id holding "lastSignal") and
//     transitions (the flip journal)
//   - Memory: the same in process, for local runs and tests
//
// "lastSignal" is NULL until the first successful transition.
package store
