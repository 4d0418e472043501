// Package funcmatch holds the function-level matching strategies of
// spec.md §4.5: one capability, "find fixed points between two sets of
// candidate functions", implemented fourteen different ways. Each
// strategy lives in its own file and is registered by name in a
// Registry the driver consults in configured order.
package funcmatch
