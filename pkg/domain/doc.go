/*
Package domain contains the core models of the terminal engine.

It defines the screen catalog, the host navigation rules, the per-connection
session state, client workflows and their results, and the error classes shared
by every other package. This package is kept pure and free of I/O.

# Key Entities

  - ScreenDefinition: a screen's identifier, fields and static text.
  - Catalog: the validated, immutable set of screens shared by host and client.
  - NavigationConfig: transition rules, credentials and entity tables for the host.
  - SessionState: one host connection's current screen and accumulated data.
  - Workflow: the ordered Navigate/Scrape/Assert steps a client executes.
  - Result: the structured outcome of a workflow run.
*/
package domain
