package engine

import (
	"sort"

	"github.com/1broseidon/ringlight/internal/platform"
)

// Plan lists the window operations that turn an existing window set into a
// desired one.
type Plan struct {
	Create []platform.DisplayID
	Update []platform.DisplayID
	Close  []platform.DisplayID
}

// Empty reports whether the plan changes the window set.
func (p Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Close) == 0
}

// Reconcile diffs desired display identifiers against existing windows.
// Create and Update follow the order of desired; Close is sorted. Repeated
// identifiers in desired are planned once.
func Reconcile[W any](desired []platform.DisplayID, existing map[platform.DisplayID]W) Plan {
	var plan Plan
	want := make(map[platform.DisplayID]struct{}, len(desired))
	for _, id := range desired {
		if _, dup := want[id]; dup {
			continue
		}
		want[id] = struct{}{}
		if _, ok := existing[id]; ok {
			plan.Update = append(plan.Update, id)
		} else {
			plan.Create = append(plan.Create, id)
		}
	}
	for id := range existing {
		if _, ok := want[id]; !ok {
			plan.Close = append(plan.Close, id)
		}
	}
	sort.Slice(plan.Close, func(i, j int) bool { return plan.Close[i] < plan.Close[j] })
	return plan
}

// Desired selects the screens that should carry a window. AllDisplays selects
// every screen; any other identifier selects at most the matching one.
func Desired(screens []platform.ScreenDescriptor, selected platform.DisplayID) []platform.ScreenDescriptor {
	if selected == platform.AllDisplays {
		return screens
	}
	for _, s := range screens {
		if s.ID == selected {
			return []platform.ScreenDescriptor{s}
		}
	}
	return nil
}
