package palette

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/1broseidon/ringlight/internal/controller"
	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/platform"
)

// Action prefixes understood by Execute.
const (
	ActionToggle     = "toggle"
	actionPreset     = "preset:"
	actionBrightness = "brightness:"
	actionDisplay    = "display:"
)

// BrightnessSteps are the intensity shortcuts offered by the menu.
var BrightnessSteps = []float64{0.25, 0.5, 0.75, 1}

// Client is the daemon surface the menu needs.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	GetPresets() (*ipc.PresetsData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	Toggle() (*ipc.StatusData, error)
	ApplyPreset(name string) (*ipc.StatusData, error)
	Set(patch ipc.SetPayload) (*ipc.StatusData, error)
	SelectDisplay(id platform.DisplayID) (*ipc.StatusData, error)
}

// Items builds the quick menu for the current daemon state.
func Items(st *ipc.StatusData, presets []light.Preset, displays []controller.Display) []Item {
	toggle := "Turn on"
	if st.Enabled {
		toggle = "Turn off"
	}
	items := []Item{{Label: toggle, Action: ActionToggle}}

	if len(presets) > 0 {
		items = append(items, Item{Label: "Presets", IsHeader: true})
		for _, p := range presets {
			items = append(items, Item{
				Label:    fmt.Sprintf("%s (%.0f K)", p.Name, p.Kelvin),
				Action:   actionPreset + p.Name,
				IsActive: p.Name == st.Preset,
			})
		}
	}

	items = append(items, Item{Label: "Brightness", IsHeader: true})
	current := math.Round(st.Params.Intensity * 100)
	for _, v := range BrightnessSteps {
		items = append(items, Item{
			Label:    fmt.Sprintf("%.0f%%", v*100),
			Action:   actionBrightness + strconv.FormatFloat(v, 'f', -1, 64),
			IsActive: math.Round(v*100) == current,
		})
	}

	if len(displays) > 0 {
		items = append(items, Item{Label: "Display", IsHeader: true})
		for _, d := range displays {
			label := d.Name
			if d.ID != platform.AllDisplays {
				label = fmt.Sprintf("%s %dx%d", d.Name, d.Frame.Width, d.Frame.Height)
			}
			items = append(items, Item{
				Label:    label,
				Action:   actionDisplay + strconv.FormatUint(uint64(d.ID), 10),
				IsActive: d.Selected,
			})
		}
	}
	return items
}

// Summary is the one-line state shown above the menu.
func Summary(st *ipc.StatusData) string {
	state := "off"
	if st.Enabled {
		state = "on"
	}
	return fmt.Sprintf("Ring light %s, %.0f%% at %.0f K", state, st.Params.Intensity*100, st.Params.Temperature)
}

// Execute performs the action of a picked item.
func Execute(c Client, action string) (*ipc.StatusData, error) {
	switch {
	case action == ActionToggle:
		return c.Toggle()
	case strings.HasPrefix(action, actionPreset):
		return c.ApplyPreset(strings.TrimPrefix(action, actionPreset))
	case strings.HasPrefix(action, actionBrightness):
		v, err := strconv.ParseFloat(strings.TrimPrefix(action, actionBrightness), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid brightness action %q: %w", action, err)
		}
		return c.Set(ipc.SetPayload{Intensity: &v})
	case strings.HasPrefix(action, actionDisplay):
		id, err := strconv.ParseUint(strings.TrimPrefix(action, actionDisplay), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid display action %q: %w", action, err)
		}
		return c.SelectDisplay(platform.DisplayID(id))
	default:
		return nil, fmt.Errorf("unknown menu action %q", action)
	}
}

// Run fetches the daemon state, shows the menu and applies the pick. A
// cancelled menu is not an error.
func Run(c Client, b Backend) error {
	st, err := c.GetStatus()
	if err != nil {
		return err
	}
	presets, err := c.GetPresets()
	if err != nil {
		return err
	}
	displays, err := c.GetDisplays()
	if err != nil {
		return err
	}

	picked, err := b.Show("ringlight", Items(st, presets.Presets, displays.Displays), Summary(st))
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = Execute(c, picked.Action)
	return err
}
