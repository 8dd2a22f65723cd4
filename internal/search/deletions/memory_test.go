package deletions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryAreDeleted(t *testing.T) {
	ctx := context.Background()
	registry := NewInMemory()

	t.Run("empty input yields empty map", func(t *testing.T) {
		result, err := registry.AreDeleted(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("unknown sirets are not deleted", func(t *testing.T) {
		result, err := registry.AreDeleted(ctx, []string{"78000403200019"})
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"78000403200019": false}, result)
	})

	t.Run("marked sirets are deleted", func(t *testing.T) {
		require.NoError(t, registry.MarkDeleted(ctx, "78000403200019", time.Now()))

		result, err := registry.AreDeleted(ctx, []string{"78000403200019", "11111111100001"})
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{
			"78000403200019": true,
			"11111111100001": false,
		}, result)
	})
}
