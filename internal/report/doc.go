// Package report defines the entities persisted by the local report store.
//
// This package contains type definitions and pure helpers only. The store,
// contract and cli packages import report; report imports nothing internal.
//
// Key design constraints:
//   - A Draft is identified by its natural key (DraftKey), never by an
//     independently assigned ID. DraftKey.ID derives the storage row ID on
//     every write.
//   - Pronoun defaults are applied when rows are read, not when written.
//   - JSON tags use camelCase to match the desktop front end's payloads.
package report
