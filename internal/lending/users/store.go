package users

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

func (s *Store) InsertUser(ctx context.Context, name string) (int64, error) {
	const q = `INSERT INTO users (name) VALUES (?)`
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

func (s *Store) GetUser(ctx context.Context, userID int64) (*User, error) {
	const q = `SELECT user_id, name FROM users WHERE user_id = ?`
	var u User
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(&u.UserID, &u.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound("User Not Found")
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]UserSummary, error) {
	const q = `SELECT user_id, name FROM users ORDER BY user_id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserSummary
	for rows.Next() {
		var u UserSummary
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUserLoans は貸出履歴を書名付きで返す（貸出中・返却済みの両方）。
func (s *Store) GetUserLoans(ctx context.Context, userID int64) ([]LoanRow, error) {
	const q = `
	SELECT b.name, l.score
	FROM loans l
	JOIN books b ON b.book_id = l.book_id
	WHERE l.user_id = ?
	ORDER BY l.loan_id`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoanRow
	for rows.Next() {
		var r LoanRow
		if err := rows.Scan(&r.BookName, &r.Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUserTx は貸出/返却Txの中での利用者存在チェック用。
func GetUserTx(ctx context.Context, tx db.DBTX, userID int64) (*User, error) {
	const q = `SELECT user_id, name FROM users WHERE user_id = ?`
	var u User
	if err := tx.QueryRowContext(ctx, q, userID).Scan(&u.UserID, &u.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound("User Not Found")
		}
		return nil, err
	}
	return &u, nil
}
