package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/parlance/pkg/domain"
)

// ErrMalformedResponse is wrapped by every ParseDecision failure.
var ErrMalformedResponse = errors.New("malformed model response")

// Decision field names in the model's JSON object.
const (
	fieldAction       = "action"
	fieldMessage      = "message"
	fieldNextState    = "next_state"
	fieldRequireInput = "require_input"
	fieldActionParams = "action_params"
)

// ParseDecision decodes the model's JSON reply. Missing fields take the
// defaults of the reference agent: empty strings, require_input = true and no
// action parameters. A reply wrapped in a markdown code fence is accepted.
func ParseDecision(raw string) (domain.Decision, error) {
	body := stripFence(strings.TrimSpace(raw))
	if body == "" {
		return domain.Decision{}, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return domain.Decision{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if obj == nil {
		return domain.Decision{}, fmt.Errorf("%w: response is not an object", ErrMalformedResponse)
	}

	var d domain.Decision
	var err error
	if d.Action, err = stringField(obj, fieldAction); err != nil {
		return domain.Decision{}, err
	}
	if d.Message, err = stringField(obj, fieldMessage); err != nil {
		return domain.Decision{}, err
	}
	if d.NextState, err = stringField(obj, fieldNextState); err != nil {
		return domain.Decision{}, err
	}

	d.RequireInput = true
	if v, ok := obj[fieldRequireInput]; ok {
		d.RequireInput = NormalizeFlag(v)
	}

	d.ActionParams = map[string]any{}
	switch params := obj[fieldActionParams].(type) {
	case nil:
	case map[string]any:
		d.ActionParams = params
	default:
		return domain.Decision{}, fmt.Errorf("%w: %s must be an object, got %T", ErrMalformedResponse, fieldActionParams, params)
	}

	return d, nil
}

// NormalizeFlag converts the loosely typed require_input value into a bool.
// The reference agent used the string "1" for true; booleans, non-zero numbers
// and the usual affirmative words are accepted as well. Null means true.
func NormalizeFlag(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return val
	case float64:
		return val != 0
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "true", "yes", "y", "on":
			return true
		}
		return false
	default:
		return false
	}
}

func stringField(obj map[string]any, key string) (string, error) {
	switch v := obj[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrMalformedResponse, key, v)
	}
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
