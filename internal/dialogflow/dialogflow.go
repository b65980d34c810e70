// Package dialogflow holds the webhook wire types the NLU layer sends and
// expects back, plus helpers for pulling typed values out of the loosely
// shaped payload.
package dialogflow

import (
	"fmt"
	"regexp"
	"strconv"
)

// WebhookRequest is the subset of the Dialogflow fulfillment payload this
// service consumes.
type WebhookRequest struct {
	QueryResult QueryResult `json:"queryResult"`
}

// QueryResult carries the matched intent, its slot-filled parameters, and
// the active contexts.
type QueryResult struct {
	Intent         Intent                 `json:"intent"`
	Parameters     map[string]interface{} `json:"parameters"`
	OutputContexts []Context              `json:"outputContexts"`
}

// Intent identifies the matched intent by display name.
type Intent struct {
	DisplayName string `json:"displayName"`
}

// Context is one active dialogue context. Its name embeds the session id.
type Context struct {
	Name string `json:"name"`
}

// WebhookResponse is the fulfillment envelope Dialogflow expects: a flat
// text field plus a structured message list carrying the same text.
type WebhookResponse struct {
	FulfillmentText     string    `json:"fulfillmentText"`
	FulfillmentMessages []Message `json:"fulfillmentMessages"`
}

// Message wraps one text reply.
type Message struct {
	Text Text `json:"text"`
}

// Text is Dialogflow's text message shape.
type Text struct {
	Text []string `json:"text"`
}

// NewResponse wraps a reply string into the response envelope.
func NewResponse(text string) WebhookResponse {
	return WebhookResponse{
		FulfillmentText: text,
		FulfillmentMessages: []Message{
			{Text: Text{Text: []string{text}}},
		},
	}
}

var sessionPattern = regexp.MustCompile(`/sessions/(.*?)/contexts/`)

// ExtractSessionID pulls the session id out of a context path of the form
// ".../sessions/{id}/contexts/...". Returns the empty string when the path
// doesn't match; it never fails.
func ExtractSessionID(contextPath string) string {
	match := sessionPattern.FindStringSubmatch(contextPath)
	if match == nil {
		return ""
	}
	return match[1]
}

// SessionID returns the session id embedded in the first output context, or
// an error when the payload carries no contexts.
func (r *WebhookRequest) SessionID() (string, error) {
	if len(r.QueryResult.OutputContexts) == 0 {
		return "", fmt.Errorf("dialogflow: payload has no output contexts")
	}
	return ExtractSessionID(r.QueryResult.OutputContexts[0].Name), nil
}

// StringSlice returns the named parameter as a slice of strings. Dialogflow
// delivers list parameters as []interface{}.
func StringSlice(params map[string]interface{}, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok {
		return nil, fmt.Errorf("dialogflow: parameter %q missing", key)
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("dialogflow: parameter %q is %T, want a list", key, raw)
	}
	out := make([]string, 0, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("dialogflow: parameter %q[%d] is %T, want a string", key, i, v)
		}
		out = append(out, s)
	}
	return out, nil
}

// NumberSlice returns the named parameter as a slice of ints. Dialogflow
// sends numbers as JSON floats; fractional quantities are truncated the way
// the conversational layer has always displayed them.
func NumberSlice(params map[string]interface{}, key string) ([]int, error) {
	raw, ok := params[key]
	if !ok {
		return nil, fmt.Errorf("dialogflow: parameter %q missing", key)
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("dialogflow: parameter %q is %T, want a list", key, raw)
	}
	out := make([]int, 0, len(list))
	for i, v := range list {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("dialogflow: parameter %q[%d] is %T, want a number", key, i, v)
		}
		out = append(out, int(f))
	}
	return out, nil
}

// Number returns the named parameter as an int. Accepts both JSON numbers
// and numeric strings, which is how Dialogflow delivers @sys.number slots
// depending on agent settings.
func Number(params map[string]interface{}, key string) (int, error) {
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("dialogflow: parameter %q missing", key)
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("dialogflow: parameter %q = %q is not numeric", key, v)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("dialogflow: parameter %q is %T, want a number", key, raw)
	}
}
