package loans

import "time"

// 貸出リクエスト
type BorrowRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	BookID int64 `json:"book_id" binding:"required"`
}

// 返却リクエスト。score は必須（1〜10）。
type ReturnRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	BookID int64 `json:"book_id" binding:"required"`
	Score  int16 `json:"score" binding:"required"`
}

type LoanResponse struct {
	LoanID     int64      `json:"loan_id"`
	LoanULID   string     `json:"loan_ulid"`
	UserID     int64      `json:"user_id"`
	BookID     int64      `json:"book_id"`
	Score      *int16     `json:"score,omitempty"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

func buildLoanResponse(l *Loan) LoanResponse {
	resp := LoanResponse{
		LoanID:     l.LoanID,
		LoanULID:   l.LoanULID,
		UserID:     l.UserID,
		BookID:     l.BookID,
		BorrowedAt: l.BorrowedAt,
	}
	if l.Score.Valid {
		val := l.Score.Int16
		resp.Score = &val
	}
	if l.ReturnedAt.Valid {
		val := l.ReturnedAt.Time
		resp.ReturnedAt = &val
	}
	return resp
}
