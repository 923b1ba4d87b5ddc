package mongo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := newRecordID()
		require.NoError(t, err)
		assert.Len(t, id, idLength)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(idAlphabet, r), "想定外の文字: %q", r)
		}
		seen[id] = struct{}{}
	}
	// 100件で重複が出る確率は無視できる
	assert.Len(t, seen, 100)
}
