package mongo

import (
	"crypto/rand"
	"fmt"
)

const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 12
)

// newRecordID は受付表ドキュメントの `_id` に使う12文字の英数字 ID を生成する。
// 一意性は `_id` の重複キー検出に任せ、衝突時は呼び出し側が再生成する。
func newRecordID() (string, error) {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("ID 生成用の乱数取得に失敗: %w", err)
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf), nil
}
