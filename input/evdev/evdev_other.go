//go:build !linux

package evdev

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/logging"
)

func newController(ctx context.Context, attrs interface{}, logger logging.Logger) (input.Controller, error) {
	return nil, errors.Errorf("the %s input controller is only supported on linux", Model)
}
