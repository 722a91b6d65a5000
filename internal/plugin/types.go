// Package plugin runs external programs when a sign is recognized.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// The executable receives a JSON Request on stdin and writes a JSON Response
// to stdout.
package plugin

import (
	"encoding/json"
	"slices"
	"time"
)

// ActionRecognized is the action sent for every newly recognized sign.
const ActionRecognized = "recognized"

// Manifest describes a plugin's metadata and the actions it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Actions     []string        `json:"actions"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Request is sent to a plugin on stdin.
type Request struct {
	Action     string          `json:"action"`
	Label      string          `json:"label"`
	Confidence float32         `json:"confidence"`
	Handedness string          `json:"handedness,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Config     json.RawMessage `json:"config,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the manifest lists action.
func (p *Plugin) Handles(action string) bool {
	return slices.Contains(p.Manifest.Actions, action)
}
