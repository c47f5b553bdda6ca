// Package model defines the data structures used throughout kgctl.
//
// This package contains the core domain models shared by the storage
// layers and the command surface.
//
// # Article
//
// The [Article] struct represents one PubMed record fetched by the
// crawler, persisted in the sqlite catalog and written to CSV/JSON
// result files.
//
// # Run
//
// The [Run] struct records one invocation of a pipeline command (setup,
// crawl, process, build, merge) in the bbolt state store, together with
// its counts and final status.
//
// # EnvRecord
//
// The [EnvRecord] struct captures the provisioned state of the conda
// environment: the conda version that created it, the interpreter spec,
// and the installed package list.
package model
