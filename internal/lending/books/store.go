package books

import (
	"context"
	"database/sql"

	"biblio-backend/internal/platform/apperr"
	"biblio-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) InsertBook(ctx context.Context, name string) (int64, error) {
	const q = `INSERT INTO books (name, is_available) VALUES (?, 1)`
	res, err := s.db.ExecContext(ctx, q, name)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetBook(ctx context.Context, bookID int64) (*Book, error) {
	const q = `SELECT book_id, name, is_available FROM books WHERE book_id = ?`
	var b Book
	if err := s.db.QueryRowContext(ctx, q, bookID).Scan(&b.BookID, &b.Name, &b.IsAvailable); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound("Book Not Found")
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]BookSummary, error) {
	const q = `SELECT book_id, name FROM books ORDER BY book_id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookSummary
	for rows.Next() {
		var b BookSummary
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetClosedScores は評価確定済み（score IS NOT NULL）のスコア一覧のみ返す。
// 貸出中の行は平均に含めない。
func (s *Store) GetClosedScores(ctx context.Context, bookID int64) ([]int16, error) {
	const q = `SELECT score FROM loans WHERE book_id = ? AND score IS NOT NULL ORDER BY loan_id`
	rows, err := s.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []int16
	for rows.Next() {
		var sc int16
		if err := rows.Scan(&sc); err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

// ---- 可用性まわり（貸出Txの中から呼ぶ） ----

// RequireAvailableTx は貸出前提条件のゲート。行ロックで本を取得し、
// 存在しない・貸出中なら NOT_AVAILABLE。二重貸出はここで止まる。
func RequireAvailableTx(ctx context.Context, tx db.DBTX, bookID int64) (*Book, error) {
	const q = `SELECT book_id, name, is_available FROM books WHERE book_id = ? FOR UPDATE`
	var b Book
	if err := tx.QueryRowContext(ctx, q, bookID).Scan(&b.BookID, &b.Name, &b.IsAvailable); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotAvailable("Book is not available")
		}
		return nil, err
	}
	if !b.IsAvailable {
		return nil, apperr.ErrNotAvailable("Book is not available")
	}
	return &b, nil
}

// GetBookForUpdateTx は返却Tx用。存在しなければ NOT_FOUND。
func GetBookForUpdateTx(ctx context.Context, tx db.DBTX, bookID int64) (*Book, error) {
	const q = `SELECT book_id, name, is_available FROM books WHERE book_id = ? FOR UPDATE`
	var b Book
	if err := tx.QueryRowContext(ctx, q, bookID).Scan(&b.BookID, &b.Name, &b.IsAvailable); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound("Book Not Found")
		}
		return nil, err
	}
	return &b, nil
}

// MarkAvailableTx / MarkUnavailableTx は冪等。すでに同じ値でもエラーにしない。
func MarkAvailableTx(ctx context.Context, tx db.DBTX, bookID int64) error {
	return setAvailabilityTx(ctx, tx, bookID, true)
}

func MarkUnavailableTx(ctx context.Context, tx db.DBTX, bookID int64) error {
	return setAvailabilityTx(ctx, tx, bookID, false)
}

func setAvailabilityTx(ctx context.Context, tx db.DBTX, bookID int64, available bool) error {
	const q = `UPDATE books SET is_available = ? WHERE book_id = ?`
	if _, err := tx.ExecContext(ctx, q, available, bookID); err != nil {
		return err
	}
	return nil
}
