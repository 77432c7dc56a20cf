//go:build xctlock_debug

package xctlock

// debugAssertionsEnabled is true when the package is built with the
// xctlock_debug tag: assertNd panics on a violated precondition instead of
// silently ignoring it.
const debugAssertionsEnabled = true
