// Package store provides the state persistence layer for kgctl.
//
// The package defines the [Store] interface which abstracts all state
// operations. The storage backend is BoltDB, an embedded key-value store;
// article data lives separately in the sqlite catalog package.
//
// # Store Interface
//
// The [Store] interface defines methods for:
//   - Run history (SaveRun, GetRun, ListRuns)
//   - Environment provisioning records (SaveEnvRecord, GetEnvRecord)
//   - Launch state of the external application (SaveAppState, GetAppState)
//
// Open a store with [New] and close it when done:
//
//	db, err := store.New(params.StatePath())
//	if err != nil { ... }
//	defer db.Close()
package store
