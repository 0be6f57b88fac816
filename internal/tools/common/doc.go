// Package common provides shared utilities for the MCP tool packages:
// argument decoding, JSON results and the instrumentation wrapper every
// tool handler is registered with.
package common
