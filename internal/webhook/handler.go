package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/eaterybot/eatery/internal/dialogflow"
	"github.com/eaterybot/eatery/internal/ledger"
	"github.com/eaterybot/eatery/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reply texts the conversational layer sends verbatim to the customer.
const (
	msgClarifyItems = "Sorry I didn't understand. Can you please specify food items and quantities clearly?"
	msgOrderMissing = "I'm having a trouble finding your order. Sorry! Can you place a new order please?"
	msgCommitFailed = "Sorry, I couldn't process your order due to a backend error. Please place a new order again"
	msgClarifyID    = "Sorry, I couldn't read that order id. Can you repeat it?"
	msgLookupFailed = "Sorry, something went wrong looking up your order. Please try again."
)

var statusTitle = cases.Title(language.English)

// handler routes a parsed webhook payload to one of the four order
// operations and renders the reply.
type handler struct {
	ledger *ledger.Ledger
	store  *store.Store
	log    *zap.Logger
}

func (h *handler) handleWebhook(c *gin.Context) {
	var req dialogflow.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	intent, err := ParseIntent(req.QueryResult.Intent.DisplayName)
	if err != nil {
		h.log.Warn("unsupported intent",
			zap.String("display_name", req.QueryResult.Intent.DisplayName))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported operation"})
		return
	}

	sessionID, err := req.SessionID()
	if err != nil {
		h.log.Warn("payload has no output contexts", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing output contexts"})
		return
	}
	if sessionID == "" {
		// A context path without /sessions/.../contexts/ still gets served,
		// keyed on the empty string.
		h.log.Warn("empty session id extracted",
			zap.String("context", req.QueryResult.OutputContexts[0].Name))
	}

	params := req.QueryResult.Parameters
	var text string
	switch intent {
	case IntentAddToOrder:
		text = h.addToOrder(sessionID, params)
	case IntentRemoveFromOrder:
		text = h.removeFromOrder(sessionID, params)
	case IntentCompleteOrder:
		text = h.completeOrder(c.Request.Context(), sessionID)
	case IntentTrackOrder:
		text = h.trackOrder(c.Request.Context(), params)
	}

	c.JSON(http.StatusOK, dialogflow.NewResponse(text))
}

// addToOrder merges the spoken items into the session's in-progress order
// and summarizes the whole order back.
func (h *handler) addToOrder(sessionID string, params map[string]interface{}) string {
	foods, err := dialogflow.StringSlice(params, "food_item")
	if err != nil {
		h.log.Warn("add: bad food_item parameter", zap.Error(err))
		return msgClarifyItems
	}
	quantities, err := dialogflow.NumberSlice(params, "number")
	if err != nil {
		h.log.Warn("add: bad number parameter", zap.Error(err))
		return msgClarifyItems
	}
	if len(foods) != len(quantities) {
		return msgClarifyItems
	}

	lines := make([]ledger.Line, len(foods))
	for i := range foods {
		lines[i] = ledger.Line{Name: foods[i], Quantity: quantities[i]}
	}
	order := h.ledger.Add(sessionID, lines)
	return fmt.Sprintf("So far you have: %s. Do you need anything else?", order)
}

// removeFromOrder drops the spoken items from the session's order and
// reports what was removed, what wasn't there, and what's left.
func (h *handler) removeFromOrder(sessionID string, params map[string]interface{}) string {
	foods, err := dialogflow.StringSlice(params, "food_item")
	if err != nil {
		h.log.Warn("remove: bad food_item parameter", zap.Error(err))
		return msgClarifyItems
	}

	removed, missing, remaining, ok := h.ledger.Remove(sessionID, foods)
	if !ok {
		return msgOrderMissing
	}

	var b strings.Builder
	if len(removed) > 0 {
		fmt.Fprintf(&b, "Removed %s from your order!", strings.Join(removed, ", "))
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, " Your current order does not have %s", strings.Join(missing, ", "))
	}
	if remaining.Empty() {
		b.WriteString(" Your order is empty!")
	} else {
		fmt.Fprintf(&b, " Here is what is left in your order: %s", remaining)
	}
	return strings.TrimSpace(b.String())
}

// completeOrder takes the session's order out of the ledger and commits it.
// The session is gone once this runs, whether or not the commit succeeds; a
// failed commit means the customer starts over.
func (h *handler) completeOrder(ctx context.Context, sessionID string) string {
	order, ok := h.ledger.Take(sessionID)
	if !ok {
		return msgOrderMissing
	}

	orderID, err := h.store.Commit(ctx, order)
	if err != nil {
		// Cause stays in the logs; the customer only hears an apology.
		h.log.Error("complete: commit failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return msgCommitFailed
	}

	total, err := h.store.TotalPrice(ctx, orderID)
	if err != nil {
		h.log.Error("complete: committed but total price lookup failed",
			zap.Int("order_id", orderID),
			zap.Error(err))
		return msgCommitFailed
	}

	return fmt.Sprintf("Awesome. We have placed your order. "+
		"Here is your order id # %d. "+
		"Your order total is %v which you can pay at the time of delivery!",
		orderID, total)
}

// trackOrder looks up the tracking status for a committed order.
func (h *handler) trackOrder(ctx context.Context, params map[string]interface{}) string {
	orderID, err := dialogflow.Number(params, "order_id")
	if err != nil {
		h.log.Warn("track: bad order_id parameter", zap.Error(err))
		return msgClarifyID
	}

	status, err := h.store.Status(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("No order found with order ID: # %d", orderID)
	}
	if err != nil {
		h.log.Error("track: status lookup failed",
			zap.Int("order_id", orderID),
			zap.Error(err))
		return msgLookupFailed
	}

	return fmt.Sprintf("The order status for order ID # %d is: %s",
		orderID, statusTitle.String(status))
}
