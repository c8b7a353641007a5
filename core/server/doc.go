// Package server holds the HTTP server configuration consumed by cmd/start.
package server
