// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics for splitter sessions and the pools driving them.
//
// Provides a concurrent-safe registry of named values with snapshot reads,
// used by tools to report capacity, consumption and timing of builds.
package control
