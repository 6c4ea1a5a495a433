// Package utils provides hashing and input validation shared by the HTTP layer.
//
// Hashing:
//   - SHA256 content hashes
//   - Deterministic JSON hashing for entity tags
//
// Validation:
//   - String length and null-byte checks
//   - Session, tool and repository id formats
//   - PTY input size limits
package utils
