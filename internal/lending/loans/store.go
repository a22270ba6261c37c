package loans

import (
	"context"
	"database/sql"
	"time"

	"biblio-backend/internal/platform/apperr"
	"biblio-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) GetLoanByULID(ctx context.Context, ulid string) (*Loan, error) {
	const q = `
	SELECT loan_id, loan_ulid, user_id, book_id, score, borrowed_at, returned_at
	FROM loans WHERE loan_ulid = ?`
	var l Loan
	err := s.db.QueryRowContext(ctx, q, ulid).Scan(
		&l.LoanID, &l.LoanULID, &l.UserID, &l.BookID, &l.Score, &l.BorrowedAt, &l.ReturnedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound("Loan Not Found")
		}
		return nil, err
	}
	return &l, nil
}

// ---- 貸出/返却Txの中から呼ぶ ----

func InsertLoanTx(ctx context.Context, tx db.DBTX, l *Loan) error {
	const q = `
	INSERT INTO loans (loan_ulid, user_id, book_id, borrowed_at)
	VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, l.LoanULID, l.UserID, l.BookID, l.BorrowedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.LoanID = id
	return nil
}

// GetOpenLoanTx は (user, book) の未返却貸出を行ロック付きで1件取得する。
// 本1冊につき open な貸出は高々1件（貸出Txが保証）なので LIMIT 1 で良い。
func GetOpenLoanTx(ctx context.Context, tx db.DBTX, userID, bookID int64) (*Loan, error) {
	const q = `
	SELECT loan_id, loan_ulid, user_id, book_id, score, borrowed_at, returned_at
	FROM loans
	WHERE user_id = ? AND book_id = ? AND score IS NULL
	LIMIT 1 FOR UPDATE`
	var l Loan
	err := tx.QueryRowContext(ctx, q, userID, bookID).Scan(
		&l.LoanID, &l.LoanULID, &l.UserID, &l.BookID, &l.Score, &l.BorrowedAt, &l.ReturnedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound("User Book Not Found")
		}
		return nil, err
	}
	return &l, nil
}

// CloseLoanTx はスコアを確定して貸出を閉じる。閉じた行は以後変更しない。
func CloseLoanTx(ctx context.Context, tx db.DBTX, loanID int64, score int16, returnedAt time.Time) error {
	const q = `UPDATE loans SET score = ?, returned_at = ? WHERE loan_id = ?`
	res, err := tx.ExecContext(ctx, q, score, returnedAt, loanID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		return apperr.ErrInternal("failed to close loan")
	}
	return nil
}
