// Package deployment provides pure functions for building deployment
// requests and interpreting backend error messages.
//
// All functions are pure (no I/O, no side effects). The imperative shell
// (internal/shell/cloud) builds requests here, submits them to the backend,
// and feeds backend error text back through the classification helpers.
//
// # Functions
//
//   - Requests: Build and verify create requests (BuildCreateRequest, Verify)
//   - Conflicts: Inspect backend error text (IsConflictMessage, ExtractConflictName)
//   - Filters: Render list filters (ListFilter.QueryString)
package deployment
