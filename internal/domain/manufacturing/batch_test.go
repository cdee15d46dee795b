package manufacturing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBatch(t *testing.T) *Batch {
	t.Helper()
	b, err := NewBatch("b-1", uuid.New(), decimal.NewFromInt(100), time.Now(), nil, "", uuid.New())
	require.NoError(t, err)
	return b
}

func TestBatchStatus_Next(t *testing.T) {
	tests := []struct {
		from BatchStatus
		to   BatchStatus
		ok   bool
	}{
		{StatusPending, StatusCutting, true},
		{StatusCutting, StatusStitching, true},
		{StatusStitching, StatusIroning, true},
		{StatusIroning, StatusPackaging, true},
		{StatusPackaging, StatusCompleted, true},
		{StatusCompleted, "", false},
		{BatchStatus("bogus"), "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			next, ok := tt.from.Next()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.to, next)
		})
	}
}

func TestNewBatch(t *testing.T) {
	b := newTestBatch(t)
	assert.Equal(t, "B-1", b.BatchNumber)
	assert.Equal(t, StatusPending, b.Status)

	_, err := NewBatch("x", uuid.New(), decimal.Zero, time.Now(), nil, "", uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	start := time.Now()
	before := start.Add(-48 * time.Hour)
	_, err = NewBatch("x", uuid.New(), decimal.NewFromInt(1), start, &before, "", uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestFormatBatchNumber(t *testing.T) {
	day := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "B-20240307-0012", FormatBatchNumber(day, 12))
}

func TestBatch_AdvanceTo(t *testing.T) {
	t.Run("walks the whole pipeline", func(t *testing.T) {
		b := newTestBatch(t)
		at := time.Now()
		for _, s := range Pipeline[1:] {
			require.NoError(t, b.AdvanceTo(s, at))
		}
		assert.Equal(t, StatusCompleted, b.Status)
		require.NotNil(t, b.CompletionDate)
		assert.Equal(t, at, *b.CompletionDate)
	})

	t.Run("cannot skip a stage", func(t *testing.T) {
		b := newTestBatch(t)
		err := b.AdvanceTo(StatusIroning, time.Now())
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		assert.Contains(t, err.Error(), "pending to cutting")
		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("cannot move backwards", func(t *testing.T) {
		b := newTestBatch(t)
		require.NoError(t, b.AdvanceTo(StatusCutting, time.Now()))
		assert.True(t, errors.Is(b.AdvanceTo(StatusPending, time.Now()), shared.ErrInvalidState))
	})

	t.Run("completed is terminal", func(t *testing.T) {
		b := newTestBatch(t)
		b.Status = StatusCompleted
		assert.True(t, errors.Is(b.AdvanceTo(StatusCompleted, time.Now()), shared.ErrInvalidState))
		assert.True(t, errors.Is(b.EnsureOpen(), shared.ErrInvalidState))
	})

	t.Run("unknown status is invalid input", func(t *testing.T) {
		b := newTestBatch(t)
		assert.True(t, errors.Is(b.AdvanceTo("dyeing", time.Now()), shared.ErrInvalidInput))
	})
}

func TestNewManufacturingCost(t *testing.T) {
	b := newTestBatch(t)
	require.NoError(t, b.AdvanceTo(StatusCutting, time.Now()))

	c, err := NewManufacturingCost(b, CostLabor, decimal.NewFromInt(500), "cutters", time.Time{}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StatusCutting, c.Stage, "cost is charged to the current stage")
	assert.Equal(t, b.ID, c.BatchID)

	_, err = NewManufacturingCost(b, CostType("bribe"), decimal.NewFromInt(1), "", time.Now(), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewManufacturingCost(b, CostLabor, decimal.NewFromInt(-1), "", time.Now(), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	b.Status = StatusCompleted
	_, err = NewManufacturingCost(b, CostLabor, decimal.NewFromInt(1), "", time.Now(), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestNewBatchMaterial(t *testing.T) {
	b := newTestBatch(t)
	m, err := NewBatchMaterial(b, uuid.New(), decimal.RequireFromString("2.5"), decimal.RequireFromString("120.10"), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "300.25", m.TotalCost.StringFixed(2))
	assert.Equal(t, StatusPending, m.Stage)
}
