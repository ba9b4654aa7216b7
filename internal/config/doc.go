// Package config defines the format-agnostic configuration model for the
// annotation engine, along with the Loader interface for reading it from a
// workspace on disk.
//
// The config.Model is the single source of truth for the resolver, filter,
// anngraph, and session packages. The concrete HCL implementation of the
// Loader interface lives in the hcladapter package.
package config
