// Package rulesource loads rule tables and variable contexts from disk and
// keeps them fresh.
//
// Rules come from delimited text files with id and condition columns;
// variables come from JSON or YAML mappings. Both are collaborators of the
// core resolver: pkg/resolver itself never touches the filesystem. The
// Watcher re-resolves when source files change, and the Scheduler
// re-resolves on a cron schedule for contexts regenerated periodically.
package rulesource
