// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		op   string
		err  error
		want model.ErrorKind
	}{
		{OpConnect, nil, model.ENone},
		{OpConnect, ports.ErrNotReachable, model.EConnectionFailed},
		{OpConnect, fmt.Errorf("connect: %w", ports.ErrUnauthorized), model.EUnauthorized},
		{OpConnect, ports.ErrNoLiveURL, model.ENoStreamingURL},
		{OpFetchDescription, ports.ErrNotFound, model.EDescriptionFetchFailed},
		{OpArchiveViewMode, ports.ErrTimeout, model.EArchiveSnapshotFailed},
		{"", errors.New("decoder"), model.ENone},
		{"", model.NewError(model.EStreamingFailed, "play_live", nil), model.EStreamingFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.op, tt.err), "%s: %v", tt.op, tt.err)
	}
}
