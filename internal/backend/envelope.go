package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	customError "github.com/segyhp/feedesk/pkg/errors"
)

// The backend answers either with the payload itself or with {"data": payload}.
// Both shapes decode to the same value; anything else is rejected.

// DecodeList decodes a JSON array that may be wrapped in a data envelope
func DecodeList[T any](body []byte) ([]T, error) {
	payload, err := unwrap(body, '[')
	if err != nil {
		return nil, err
	}

	items := make([]T, 0)
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}

// DecodeOne decodes a JSON object that may be wrapped in a data envelope
func DecodeOne[T any](body []byte) (*T, error) {
	payload, err := unwrap(body, '{')
	if err != nil {
		return nil, err
	}

	var item T
	if err := json.Unmarshal(payload, &item); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return &item, nil
}

// unwrap returns the payload whose first token is want ('[' or '{')
func unwrap(body []byte, want byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, unexpected("empty body")
	}

	if trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, unexpected(err.Error())
		}
		if data, ok := envelope["data"]; ok {
			inner := bytes.TrimSpace(data)
			if len(inner) > 0 && inner[0] == want {
				return inner, nil
			}
			return nil, unexpected(fmt.Sprintf("data field holds %s", describe(inner)))
		}
	}

	if trimmed[0] == want {
		return trimmed, nil
	}
	return nil, unexpected(fmt.Sprintf("body holds %s", describe(trimmed)))
}

func describe(raw []byte) string {
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '[':
		return "an array"
	case '{':
		return "an object"
	case '"':
		return "a string"
	case 'n':
		return "null"
	case 't', 'f':
		return "a boolean"
	default:
		return "a number"
	}
}

func unexpected(detail string) error {
	return fmt.Errorf("%w: %s", customError.ErrUnexpectedEnvelope, detail)
}
