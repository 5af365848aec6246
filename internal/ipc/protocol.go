package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/ringlight/internal/controller"
	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing          CommandType = "PING"
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandGetDisplays   CommandType = "GET_DISPLAYS"
	CommandGetPresets    CommandType = "GET_PRESETS"
	CommandSet           CommandType = "SET"
	CommandEnable        CommandType = "ENABLE"
	CommandDisable       CommandType = "DISABLE"
	CommandToggle        CommandType = "TOGGLE"
	CommandApplyPreset   CommandType = "APPLY_PRESET"
	CommandSelectDisplay CommandType = "SELECT_DISPLAY"
	CommandReload        CommandType = "RELOAD"
)

// Response status values.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS and every mutating command.
type StatusData = controller.Status

// SetPayload is the payload of SET. Omitted fields are unchanged.
type SetPayload = controller.Patch

// DisplaysData is returned by GET_DISPLAYS.
type DisplaysData struct {
	Displays []controller.Display `json:"displays"`
}

// PresetsData is returned by GET_PRESETS.
type PresetsData struct {
	Presets  []light.Preset `json:"presets"`
	Selected string         `json:"selected,omitempty"`
}

// ApplyPresetPayload is the payload of APPLY_PRESET.
type ApplyPresetPayload struct {
	Name string `json:"name"`
}

// SelectDisplayPayload is the payload of SELECT_DISPLAY. ID 0 selects every
// display.
type SelectDisplayPayload struct {
	ID platform.DisplayID `json:"id"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
