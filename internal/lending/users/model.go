package users

import "database/sql"

// User は users テーブルの1行を表す
type User struct {
	UserID int64
	Name   string
}

// LoanRow は getUserWithBooks 用のJOIN結果1行。
// Score が NULL なら貸出中、確定済みなら返却済み。
type LoanRow struct {
	BookName string
	Score    sql.NullInt16
}
