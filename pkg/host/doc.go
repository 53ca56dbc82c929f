/*
Package host implements the host side of the terminal conversation.

A Server accepts connections, negotiates each one in the host role, paints the
initial screen and then loops: decode the client's input, let the Navigator pick
the next screen from the transition rules, and paint it. Each connection is
served by its own goroutine and owns its domain.SessionState; nothing mutable is
shared between sessions except the registry of snapshots.
*/
package host
