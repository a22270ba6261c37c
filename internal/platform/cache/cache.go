package cache

import (
	"context"
	"fmt"
)

// Store は読み取りビューのキャッシュ先。
// 値はシリアライズ済みスナップショットで、TTLなし・明示削除のみ。
// Get の bool はヒット/ミス（ミスはエラーではない）。
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

// キーは "<entity>:<id>" 固定。書き込み側の無効化と読み側の再構築が
// 同じキーを指すよう、生成はここに集約する。
func UserKey(userID int64) string { return fmt.Sprintf("user:%d", userID) }
func BookKey(bookID int64) string { return fmt.Sprintf("book:%d", bookID) }
