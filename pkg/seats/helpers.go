package seats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ritmofit/cupos/pkg/cache"
)

// loadSeats reads and decodes the full seat map stored under key
// A missing key is an empty map, any other failure wraps ErrStorageUnavailable
func loadSeats(ctx context.Context, c cache.Cache, key string) (map[string]seatRecord, error) {
	seats := make(map[string]seatRecord)

	val, err := c.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return seats, nil
		}
		return nil, fmt.Errorf("%w: failed to read seat counts: %w", ErrStorageUnavailable, err)
	}

	var raw []byte
	switch v := val.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return nil, fmt.Errorf("%w: unexpected seat counts value type %T", ErrStorageUnavailable, val)
	}

	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal seat counts: %w", ErrStorageUnavailable, err)
	}
	if seats == nil {
		seats = make(map[string]seatRecord)
	}

	return seats, nil
}

// saveSeats encodes and writes the full seat map under key without expiration
func saveSeats(ctx context.Context, c cache.Cache, key string, seats map[string]seatRecord) error {
	data, err := json.Marshal(seats)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal seat counts: %w", ErrStorageUnavailable, err)
	}

	if err := c.Set(ctx, key, string(data), cache.NoExpiration); err != nil {
		return fmt.Errorf("%w: failed to write seat counts: %w", ErrStorageUnavailable, err)
	}

	return nil
}
