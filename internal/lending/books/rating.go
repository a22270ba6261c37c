package books

import "math"

// UnratedScore は評価済み貸出が1件もない場合の番兵値。
// 有効な平均は常に [1.00, 10.00] に入るので呼び出し側は区別できる。
const UnratedScore = -1

// AverageScore は閉じた貸出（score確定済み）のスコアだけを平均する。
// 貸出中（score未確定）の行は呼び出し側で除外して渡すこと。
// 小数第2位で四捨五入（half away from zero）。
func AverageScore(scores []int16) float64 {
	if len(scores) == 0 {
		return UnratedScore
	}
	var sum int64
	for _, s := range scores {
		sum += int64(s)
	}
	avg := float64(sum) / float64(len(scores))
	return math.Round(avg*100) / 100
}
