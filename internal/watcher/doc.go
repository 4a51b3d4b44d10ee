// Package watcher turns raw filesystem change notifications into debounced
// settlements.
//
// Editors and operating systems emit many notifications for a single
// logical edit (truncate, write, chmod, rename-over). The Debouncer collapses
// such a burst into one settlement once the directory has been quiet for the
// configured window, and guarantees that settlements for the same directory
// never overlap: a settlement that becomes due while the previous callback is
// still running is executed right after it returns.
//
// Watch wires a Debouncer to an fsnotify watcher on one directory. If the
// notification source fails, the OnLost callback receives an error wrapping
// ErrWatchLost and the watcher stops; hot-reload for that directory is then
// unavailable until the process restarts.
package watcher
