// Package main provides a plugin that speaks each recognized sign aloud.
// It uses `say` on macOS and `espeak` elsewhere.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action     string          `json:"action"`
	Label      string          `json:"label"`
	Confidence float32         `json:"confidence"`
	Config     json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config is read from the manifest's config block.
type Config struct {
	Voice string `json:"voice"`
	// MinConfidence suppresses low-confidence predictions.
	MinConfidence float32 `json:"min_confidence"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Action != "recognized" {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}

	if req.Label == "" || req.Confidence < cfg.MinConfidence {
		writeSuccessResponse()
		return
	}

	if err := speak(req.Label, cfg.Voice); err != nil {
		writeErrorResponse(fmt.Sprintf("speak %q failed: %v", req.Label, err))
		return
	}
	writeSuccessResponse()
}

func speak(text, voice string) error {
	name, args := speechCommand(runtime.GOOS, text, voice)
	if _, err := exec.LookPath(name); err != nil {
		return errors.New(name + " is not installed")
	}
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func speechCommand(goos, text, voice string) (string, []string) {
	if goos == "darwin" {
		if voice != "" {
			return "say", []string{"-v", voice, text}
		}
		return "say", []string{text}
	}
	if voice != "" {
		return "espeak", []string{"-v", voice, text}
	}
	return "espeak", []string{text}
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
