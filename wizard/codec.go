// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/delphi-survey/models"
)

// JSONLoader adapts a byte-oriented session getter to a Loader.
func JSONLoader(get func(ctx context.Context, id string) ([]byte, error)) Loader {
	return func(ctx context.Context, id string) (*State, error) {
		b, err := get(ctx, id)
		if err != nil {
			return nil, err
		}
		var s State
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", id, err)
		}
		return &s, nil
	}
}

// JSONSaver adapts a byte-oriented session setter to a Saver.
func JSONSaver(put func(ctx context.Context, id string, state []byte) error) Saver {
	return func(ctx context.Context, s *State) error {
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", s.ID, err)
		}
		return put(ctx, s.ID, b)
	}
}

// JSONCommitter adapts a byte-oriented submit to a Committer.
func JSONCommitter(put func(ctx context.Context, id string, state []byte, responses []models.Response) (int, error)) Committer {
	return func(ctx context.Context, s *State, responses []models.Response) (int, error) {
		b, err := json.Marshal(s)
		if err != nil {
			return 0, fmt.Errorf("encode session %s: %w", s.ID, err)
		}
		return put(ctx, s.ID, b, responses)
	}
}
