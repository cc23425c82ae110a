package memoerrors

import (
	"encoding/json"
	"strings"
)

// FormatForCLI formats an error for terminal display: message, optional
// hint, and the Kind for scripting against.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	me, ok := err.(*MemoError)
	if !ok {
		return "Error: " + err.Error() + "\n"
	}

	var sb strings.Builder
	sb.WriteString("Error: ")
	sb.WriteString(me.Message)
	sb.WriteString("\n")
	if me.Suggestion != "" {
		sb.WriteString("  Hint: ")
		sb.WriteString(me.Suggestion)
		sb.WriteString("\n")
	}
	sb.WriteString("  Kind: ")
	sb.WriteString(string(me.Kind))
	sb.WriteString("\n")
	return sb.String()
}

// jsonError is the JSON wire representation of a MemoError that FormatJSON
// encodes.
type jsonError struct {
	Kind       string            `json:"kind"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns the JSON representation of err, suitable for MCP tool
// error content or structured API responses.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	me, ok := err.(*MemoError)
	if !ok {
		me = Wrap(KindIntegrityViolation, err)
	}

	je := jsonError{
		Kind:       string(me.Kind),
		Message:    me.Message,
		Details:    me.Details,
		Suggestion: me.Suggestion,
		Retryable:  me.Retryable(),
	}
	if me.Cause != nil {
		je.Cause = me.Cause.Error()
	}
	return json.Marshal(je)
}

// FormatForLog returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	me, ok := err.(*MemoError)
	if !ok {
		return map[string]any{"error": err.Error()}
	}

	result := map[string]any{
		"error_kind": string(me.Kind),
		"message":    me.Message,
		"retryable":  me.Retryable(),
	}
	if me.Cause != nil {
		result["cause"] = me.Cause.Error()
	}
	if me.Suggestion != "" {
		result["suggestion"] = me.Suggestion
	}
	for k, v := range me.Details {
		result["detail_"+k] = v
	}
	return result
}
