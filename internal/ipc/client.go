package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/ringlight/internal/platform"
	"github.com/1broseidon/ringlight/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for socketPath.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    10 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

func (c *Client) status(cmd CommandType, payload any) (*StatusData, error) {
	var status StatusData
	if err := c.call(cmd, payload, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	return c.call(CommandPing, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	return c.status(CommandGetStatus, nil)
}

// GetDisplays lists selectable displays, starting with "All Displays".
func (c *Client) GetDisplays() (*DisplaysData, error) {
	var data DisplaysData
	if err := c.call(CommandGetDisplays, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPresets lists temperature presets.
func (c *Client) GetPresets() (*PresetsData, error) {
	var data PresetsData
	if err := c.call(CommandGetPresets, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Set applies a partial parameter update.
func (c *Client) Set(patch SetPayload) (*StatusData, error) {
	return c.status(CommandSet, patch)
}

// Enable turns the ring light on.
func (c *Client) Enable() (*StatusData, error) {
	return c.status(CommandEnable, nil)
}

// Disable turns the ring light off.
func (c *Client) Disable() (*StatusData, error) {
	return c.status(CommandDisable, nil)
}

// Toggle flips the ring light.
func (c *Client) Toggle() (*StatusData, error) {
	return c.status(CommandToggle, nil)
}

// ApplyPreset applies a named temperature preset.
func (c *Client) ApplyPreset(name string) (*StatusData, error) {
	return c.status(CommandApplyPreset, ApplyPresetPayload{Name: name})
}

// SelectDisplay selects one display, or every display for id 0.
func (c *Client) SelectDisplay(id platform.DisplayID) (*StatusData, error) {
	return c.status(CommandSelectDisplay, SelectDisplayPayload{ID: id})
}

// Reload makes the daemon re-read its settings file.
func (c *Client) Reload() (*StatusData, error) {
	return c.status(CommandReload, nil)
}
