package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyFormat(t *testing.T) {
	require.Equal(t, "user:1", UserKey(1))
	require.Equal(t, "book:42", BookKey(42))
}

func TestMemoryGetSetDel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "user:1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(ctx, "user:1", []byte(`{"id":1}`)))
	require.NoError(t, m.Set(ctx, "book:1", []byte(`{"id":1}`)))

	v, ok, err := m.Get(ctx, "user:1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`{"id":1}`), v)

	// 複数キーの一括削除（返却時の無効化と同じ形）
	require.NoError(t, m.Del(ctx, "user:1", "book:1"))
	require.Equal(t, 0, m.Len())

	// 存在しないキーの削除は冪等
	require.NoError(t, m.Del(ctx, "user:1"))
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	src := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", src))
	src[0] = 'z'

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("abc"), v)

	v[0] = 'q'
	v2, _, _ := m.Get(ctx, "k")
	require.Equal(t, []byte("abc"), v2)
}
