// Package slog provides decorators that log calls to harvest services.
// Every call is logged at Debug level with its duration and error.
package slog
