// Package session persists controller snapshots between web requests.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ZaguanLabs/formlingo"
)

// Store is the interface for session snapshot storage.
type Store interface {
	// Load retrieves a snapshot. Returns false if not found or expired.
	Load(ctx context.Context, id string) (formlingo.State, bool, error)

	// Save stores a snapshot, refreshing its expiry.
	Save(ctx context.Context, id string, state formlingo.State) error

	// Delete removes a snapshot. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// encode serializes a snapshot. Loading is never persisted.
func encode(state formlingo.State) ([]byte, error) {
	state.Loading = false
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("session: encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (formlingo.State, error) {
	var state formlingo.State
	if err := json.Unmarshal(data, &state); err != nil {
		return formlingo.State{}, fmt.Errorf("session: decode snapshot: %w", err)
	}
	return state, nil
}
