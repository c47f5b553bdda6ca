// Package core provides the business logic layer for kgctl.
//
// This package contains the operations behind the CLI commands, separated
// from UI concerns: provisioning the conda environment, launching the
// Python application inside it, and diagnosing the installation.
//
// # Design Principles
//
//   - Functions return errors instead of printing to stdout/stderr
//   - Conda access goes through the [EnvManager] interface so tests can
//     substitute a mock
//   - UI-specific logic belongs in the cmd package, not here
//
// # Setup And Launch
//
// The two entry points mirror the two phases of using the toolkit:
//
//  1. [SetupEnv] - Creates the managed environment and installs the
//     Python packages the application needs
//  2. [LaunchApp] - Runs the application script inside that environment
//     and reports its exit code
//
// Both record their outcome in the state store so `kgctl status` can show
// what happened last.
package core
