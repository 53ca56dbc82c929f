/*
Package client drives a host through declarative workflows.

An Engine dials the host, negotiates in the client role, reads the initial
screen and then executes the workflow's steps in order:

  - navigate: fill input fields, press an attention key, optionally expect a screen
  - scrape: copy field values into the run's output
  - assert: check screen identity, the error line and field values

Application failures (wrong screen, missing field, failed assertion, error text)
are retried per step. Transport failures (timeouts, disconnects, cancellation)
end the run immediately. Every run ends in a domain.Result that carries the
partial output and a diagnostic log, whether it succeeded or not.
*/
package client
