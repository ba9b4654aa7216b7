// Package cli turns command-line arguments into an app.Config. It owns
// flag parsing, input validation, and exit-code selection; everything past
// that point belongs to the app package.
package cli
