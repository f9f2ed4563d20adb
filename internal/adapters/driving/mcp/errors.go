// Package mcp provides an MCP (Model Context Protocol) server adapter for cardstudio.
// It lets AI assistants list, render, create and remap cards.
package mcp

import "errors"

// ErrMissingCardService is returned when the card service is not provided.
var ErrMissingCardService = errors.New("mcp: card service is required")
