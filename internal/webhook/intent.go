package webhook

import (
	"errors"
	"fmt"
)

// Intent is the closed set of order operations the webhook supports.
type Intent int

const (
	IntentAddToOrder Intent = iota
	IntentRemoveFromOrder
	IntentCompleteOrder
	IntentTrackOrder
)

// ErrUnknownIntent is returned by ParseIntent for display names outside the
// supported set.
var ErrUnknownIntent = errors.New("webhook: unknown intent")

// Display names as configured on the Dialogflow agent.
const (
	displayAdd      = "order-add (context: ongoing-order)"
	displayRemove   = "order-remove (context: ongoing-order)"
	displayComplete = "order-complete (context: ongoing-order)"
	displayTrack    = "track-order (context: ongoing-tracking)"
)

// ParseIntent maps a Dialogflow intent display name onto an Intent.
func ParseIntent(displayName string) (Intent, error) {
	switch displayName {
	case displayAdd:
		return IntentAddToOrder, nil
	case displayRemove:
		return IntentRemoveFromOrder, nil
	case displayComplete:
		return IntentCompleteOrder, nil
	case displayTrack:
		return IntentTrackOrder, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownIntent, displayName)
	}
}

func (i Intent) String() string {
	switch i {
	case IntentAddToOrder:
		return "add-to-order"
	case IntentRemoveFromOrder:
		return "remove-from-order"
	case IntentCompleteOrder:
		return "complete-order"
	case IntentTrackOrder:
		return "track-order"
	default:
		return fmt.Sprintf("Intent(%d)", int(i))
	}
}
