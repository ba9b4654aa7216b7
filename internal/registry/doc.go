// Package registry holds the named Go hook handlers that the declarative
// workspace configuration refers to: target computation hooks, fixed-point
// calculation hooks, figure rendering hooks, and the one-time init hook.
//
// Hooks are registered by modules at startup and looked up by name when the
// configuration is evaluated. Registering the same name twice is a
// programmer error and panics, matching the fail-fast registration style of
// the rest of the codebase.
package registry
