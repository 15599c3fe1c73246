//go:build !idf && !cgo

package hal

import (
	"context"
	"errors"
)

func RunWindow(_ *Host, _ int, _ func(ctx context.Context) error) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
