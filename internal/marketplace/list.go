package marketplace

import (
	"bytes"
	"delivery-marketplace/internal/operation"
	"fmt"
)

// decodeList reads a list answer. Anything other than a JSON array counts as
// an empty list, since backends disagree on envelopes.
func decodeList[T any](resp operation.Response) ([]T, error) {
	data := bytes.TrimSpace(resp.Data)
	if len(data) == 0 || data[0] != '[' {
		return []T{}, nil
	}

	var items []T
	if err := resp.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}
