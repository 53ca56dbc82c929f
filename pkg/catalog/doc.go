/*
Package catalog loads the declarative inputs of the engine: the screen catalog,
the host navigation configuration and client workflows.

Every source is YAML (JSON is accepted as a YAML subset). Documents are decoded
generically and then mapped onto the domain types with mapstructure, so unknown
keys are reported as configuration errors instead of being silently ignored.
A catalog source may hold one screen per document or a list of screens, and a
catalog path may be a single file or a directory of files.
*/
package catalog
