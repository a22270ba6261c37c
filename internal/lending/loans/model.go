package loans

import (
	"database/sql"
	"time"
)

// Loan は loans テーブルの1行を表す。
// Score が NULL のあいだは貸出中（open）、確定した時点で返却済み（closed）。
// 行は削除しない。評価の平均計算のため履歴として残す。
type Loan struct {
	LoanID     int64
	LoanULID   string
	UserID     int64
	BookID     int64
	Score      sql.NullInt16
	BorrowedAt time.Time
	ReturnedAt sql.NullTime
}
