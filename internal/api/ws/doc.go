// Package ws attaches browsers to PTY-hosted container sessions.
//
// Message Types (Client → Server), JSON text frames:
//   - input: keystrokes in "data"
//   - resize: new "cols" and "rows"
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - attached: session info, sent once (JSON)
//   - output: raw terminal bytes (binary frames)
//   - exit: the session ended, with "exit_code" when known (JSON)
//   - error: a frame could not be applied (JSON)
//
// Example Usage:
//
//	handler := ws.NewHandler(sessions, logger)
//	router.GET("/sessions/:id/stream", handler.HandleSession)
package ws
