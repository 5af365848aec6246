package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/ringlight/internal/controller"
	"github.com/1broseidon/ringlight/internal/ipc"
)

func (s *Server) handleGetRingLight(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetRingLightInput) (*mcpsdk.CallToolResult, RingLightOutput, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return nil, RingLightOutput{}, err
	}
	return nil, ringLightOutput(st), nil
}

func (s *Server) handleSetRingLight(_ context.Context, _ *mcpsdk.CallToolRequest, args SetRingLightInput) (*mcpsdk.CallToolResult, RingLightOutput, error) {
	patch := ipc.SetPayload{
		Enabled:      args.Enabled,
		Width:        args.Width,
		Feather:      args.Feather,
		Intensity:    args.Intensity,
		Temperature:  args.Temperature,
		CornerRadius: args.CornerRadius,
		EdgeInset:    args.EdgeInset,
	}
	if patch.Empty() {
		return nil, RingLightOutput{}, fmt.Errorf("at least one parameter is required")
	}

	st, err := s.client.Set(patch)
	if err != nil {
		s.logger.Warn("set_ring_light failed", "error", err)
		return nil, RingLightOutput{}, err
	}
	s.logger.Info("ring light updated", "enabled", st.Enabled, "temperature", st.Effective.Temperature)
	return nil, ringLightOutput(st), nil
}

func (s *Server) handleApplyPreset(_ context.Context, _ *mcpsdk.CallToolRequest, args ApplyPresetInput) (*mcpsdk.CallToolResult, RingLightOutput, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return nil, RingLightOutput{}, fmt.Errorf("name is required")
	}
	st, err := s.client.ApplyPreset(name)
	if err != nil {
		return nil, RingLightOutput{}, err
	}
	return nil, ringLightOutput(st), nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	data, err := s.client.GetDisplays()
	if err != nil {
		return nil, ListDisplaysOutput{}, err
	}
	out := ListDisplaysOutput{Displays: make([]DisplayInfo, 0, len(data.Displays))}
	for _, d := range data.Displays {
		out.Displays = append(out.Displays, DisplayInfo{
			ID:       uint32(d.ID),
			Name:     d.Name,
			X:        d.Frame.X,
			Y:        d.Frame.Y,
			Width:    d.Frame.Width,
			Height:   d.Frame.Height,
			Selected: d.Selected,
		})
	}
	return nil, out, nil
}

func (s *Server) handleSelectDisplay(_ context.Context, _ *mcpsdk.CallToolRequest, args SelectDisplayInput) (*mcpsdk.CallToolResult, RingLightOutput, error) {
	data, err := s.client.GetDisplays()
	if err != nil {
		return nil, RingLightOutput{}, err
	}
	id, err := controller.ResolveDisplay(data.Displays, args.Display)
	if err != nil {
		return nil, RingLightOutput{}, err
	}
	st, err := s.client.SelectDisplay(id)
	if err != nil {
		return nil, RingLightOutput{}, err
	}
	return nil, ringLightOutput(st), nil
}

func ringLightOutput(st *ipc.StatusData) RingLightOutput {
	out := RingLightOutput{
		Enabled:         st.Enabled,
		Width:           st.Effective.Width,
		Feather:         st.Effective.Feather,
		Intensity:       st.Effective.Intensity,
		Temperature:     st.Effective.Temperature,
		CornerRadius:    st.Effective.CornerRadius,
		EdgeInset:       st.Effective.EdgeInset,
		Color:           st.Color,
		Preset:          st.Preset,
		SelectedDisplay: uint32(st.SelectedDisplay),
		Overlays:        make([]OverlayInfo, 0, len(st.Windows)),
	}
	for _, w := range st.Windows {
		out.Overlays = append(out.Overlays, OverlayInfo{
			Display:  uint32(w.Display),
			Name:     w.Name,
			Renderer: w.Renderer,
		})
	}
	return out
}
