// Package batch provides helpers for tools that act on many tasks at once.
//
// This package includes helpers for:
//   - Parsing and schema-validating taskVerifications arguments
//   - Running an operation per item while collecting partial failures
//   - Rendering a plain text summary of a batch
package batch
