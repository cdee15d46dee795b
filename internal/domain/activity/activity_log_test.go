package activity

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLog(t *testing.T) {
	uid := uuid.New()
	l, err := NewLog(Entry{
		UserID:      &uid,
		Action:      ActionTransfer,
		Module:      ModuleInventory,
		Description: " moved 10 units ",
	}, "10.0.0.1", strings.Repeat("a", 300))
	require.NoError(t, err)

	assert.Equal(t, "moved 10 units", l.Description)
	assert.Len(t, l.UserAgent, 255)
	assert.Equal(t, "10.0.0.1", l.IPAddress)
	assert.Equal(t, uid, *l.UserID)

	_, err = NewLog(Entry{Module: ModuleInventory}, "", "")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
