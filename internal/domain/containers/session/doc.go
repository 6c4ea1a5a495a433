// Package session hosts interactive container sessions inside backend PTYs.
//
// It is used by the pty launch mode: instead of handing the container argv
// to a terminal emulator, the backend starts it under a pseudo-terminal and
// the front end drives it through input, resize and output calls or a
// websocket stream.
//
// Each session keeps a 1MB circular output buffer for polling readers and
// fans every chunk out to live subscribers. A session is marked inactive
// when its process exits; Kill removes it.
package session
