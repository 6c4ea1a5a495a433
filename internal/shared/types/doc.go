// Package types provides shared data structures for the backend.
//
// Core Types:
//   - Service, Tool, Parameter: provider definitions exposed by the registry
//   - Context: caller information passed to tool executions
//   - Result: standard tool result
//
// Request Types:
//   - ExecuteRequest: service tool execution
//   - InputRequest, ResizeRequest: PTY session control
//   - WSMessage: session stream frames
package types
