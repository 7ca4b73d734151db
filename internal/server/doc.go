// Package server implements the HTTP layer: a minimal router with middleware
// support, the browser game handler and its JSON API, and the one-shot OAuth
// callback handler used by the terminal authorization flow.
package server
