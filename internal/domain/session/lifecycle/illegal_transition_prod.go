// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build !debug

package lifecycle

import (
	"fmt"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
)

func illegalTransition(from, to model.StateKind, reason string) error {
	return fmt.Errorf("%w: %s -> %s (%s)", ErrIllegalTransition, from, to, reason)
}
