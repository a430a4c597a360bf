// Package utils provides utility packages for common operations.
//
// This package contains subpackages with utility functions used across
// the autolocal codebase:
//
//   - envvar: Environment variable expansion in configuration values
//   - notify: Formatted console messages with colors and run identifiers
//   - runlog: Durable per-run log files and the activity journal
//   - runner: External command execution with captured output
//   - timer: Execution time tracking for single and multi-stage operations
//
// These utilities are designed to be simple, focused, and reusable across
// different parts of the application.
package utils
