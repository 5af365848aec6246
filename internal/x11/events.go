package x11

import (
	"fmt"

	"github.com/1broseidon/ringlight/internal/notify"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// WatchTopology selects RandR change notifications on the root window and
// fans them out to topology subscribers. Handlers run on the X event
// goroutine.
func (c *Connection) WatchTopology() error {
	mask := uint16(randr.NotifyMaskScreenChange | randr.NotifyMaskCrtcChange | randr.NotifyMaskOutputChange)
	if err := randr.SelectInputChecked(c.XUtil.Conn(), c.Root, mask).Check(); err != nil {
		return fmt.Errorf("randr select input: %w", err)
	}

	xevent.HookFun(func(_ *xgbutil.XUtil, ev interface{}) bool {
		if isTopologyEvent(ev) {
			c.topology.Notify(struct{}{})
		}
		return true
	}).Connect(c.XUtil)
	return nil
}

// SubscribeTopology registers handler for display topology changes.
func (c *Connection) SubscribeTopology(handler func()) notify.Token {
	return c.topology.Subscribe(func(struct{}) { handler() })
}

// UnsubscribeTopology removes a topology subscription.
func (c *Connection) UnsubscribeTopology(token notify.Token) {
	c.topology.Unsubscribe(token)
}

func isTopologyEvent(ev interface{}) bool {
	switch ev.(type) {
	case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
		return true
	default:
		return false
	}
}
