// Package clock は現在時刻を供給するコラボレータを提供する。
package clock

import "time"

// Clock は現在時刻を返すインターフェース。
// 戻り値は常にUTCに正規化されている。
type Clock interface {
	Now() time.Time
}

// System はシステム時計を使うClock実装。
type System struct{}

// Now は現在時刻をUTCで返す。
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed は常に同じ時刻を返すClock実装。テストやバッチの再実行で使用する。
type Fixed time.Time

// Now は固定時刻をUTCで返す。
func (f Fixed) Now() time.Time {
	return time.Time(f).UTC()
}

var (
	_ Clock = System{}
	_ Clock = Fixed{}
)
