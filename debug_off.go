//go:build !xctlock_debug

package xctlock

// debugAssertionsEnabled is false in ordinary builds: assertNd is a no-op.
const debugAssertionsEnabled = false
