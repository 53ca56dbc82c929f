/*
Package session tracks the host's live connections.

Each connection owns its domain.SessionState exclusively; the Registry only keeps
read-only snapshots (screen, turn count, terminal type) that the admin surface and
the capacity check can read concurrently. Snapshots never carry session data, so
nothing an operator typed is exposed through them.
*/
package session
