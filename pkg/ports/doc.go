/*
Package ports defines the driven ports of the workflow tooling.

  - ResultStore: persists workflow run results (memory, file or Redis backed).
  - Locker: serializes workflow runs across processes.

RunResultStoreContract is a shared test suite every ResultStore implementation runs.
*/
package ports
