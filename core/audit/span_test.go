// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"errors"
	"testing"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size int
		want string
	}{
		{0, "0"},
		{1023, "1023"},
		{1024, "1.00K"},
		{1536, "1.50K"},
		{bytesInMB, "1.00M"},
		{3 * bytesInGB, "3.00G"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, humanizeSize(tt.size))
	}
}

func TestServerTimingName(t *testing.T) {
	t.Parallel()

	span := Span{Destination: ToAdmin, Method: "POST", URL: "/cache/clear"}

	assert.Equal(t, "admin$POST$L2NhY2hlL2NsZWFy", span.ServerTimingName())
}

func TestSpanRecordsMetric(t *testing.T) {
	t.Parallel()

	var timing servertiming.Header

	ctx := servertiming.NewContext(context.Background(), &timing)

	span := Span{Destination: ToDictionary, Method: "POST", URL: "/dictionaries/reload"}
	span.Begin(ctx)
	span.End()

	// A second End must not overwrite the first measurement.
	first := span.Duration()
	span.End()
	assert.Equal(t, first, span.Duration())

	require.Len(t, timing.Metrics, 1)
	assert.Equal(t, span.ServerTimingName(), timing.Metrics[0].Name)
	assert.Equal(t, first, timing.Metrics[0].Duration)
	assert.Contains(t, timing.Metrics[0].Extra, "start")
}

func TestSpanWithoutTimingContext(t *testing.T) {
	t.Parallel()

	span := Span{Destination: ToCache, Error: errors.New("boom")}
	span.Begin(context.Background())
	span.End()

	assert.GreaterOrEqual(t, int64(span.Duration()), int64(0))
	assert.NotPanics(t, span.Log)
}
