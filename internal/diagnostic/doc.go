// Package diagnostic collects warnings, errors and informational notes
// produced while resolving a creation request.
//
// Key capabilities:
//   - Unused selector reports with the selector rendering
//   - Unresolved interface types with the node path
//   - Directive conflicts settled by precedence (ties)
//   - Strict mode promotion of warnings to errors
package diagnostic
