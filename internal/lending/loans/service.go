package loans

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	ulid "github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"biblio-backend/internal/lending/books"
	"biblio-backend/internal/lending/users"
	"biblio-backend/internal/platform/apperr"
	"biblio-backend/internal/platform/cache"
	"biblio-backend/internal/platform/db"
)

// -------------- Clock & ID --------------

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// -------------- Service --------------

// Service は貸出/返却のコーディネータ。
// 前提チェック・貸出行の作成/クローズ・可用性フラグの反転を1つのTxで行い、
// コミット後にキャッシュを無効化する（best-effort）。
type Service struct {
	db    *sql.DB
	store *Store
	cache cache.Store
	log   *zap.Logger
	clock Clock
	id    IDGen
}

func NewService(sqldb *sql.DB, cs cache.Store, log *zap.Logger) *Service {
	return &Service{
		db:    sqldb,
		store: NewStore(sqldb),
		cache: cs,
		log:   log,
		clock: realClock{},
		id:    ulidGen{},
	}
}

// BorrowBook: 利用者存在 → 本の行ロック+可用性チェック → 貸出行INSERT →
// is_available=0。すべて同一Tx。二重貸出は行ロックで直列化され、後着は
// NOT_AVAILABLE で落ちる。
func (s *Service) BorrowBook(ctx context.Context, userID, bookID int64) (*LoanResponse, error) {
	if userID <= 0 || bookID <= 0 {
		return nil, apperr.ErrInvalid("user_id and book_id must be positive")
	}

	now := s.clock.Now()
	loan := &Loan{
		LoanULID:   s.id.NewULID(now),
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
	}

	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		if _, err := users.GetUserTx(ctx, tx, userID); err != nil {
			return err
		}
		book, err := books.RequireAvailableTx(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if err := InsertLoanTx(ctx, tx, loan); err != nil {
			return err
		}
		return books.MarkUnavailableTx(ctx, tx, book.BookID)
	})
	if err != nil {
		return nil, err
	}

	// コミット後の無効化。本のビューは閉じた貸出しか数えないので触らない。
	// 失敗してもDB状態は正なのでログだけ残す（次の書き込みで再無効化される）。
	s.invalidate(ctx, cache.UserKey(userID))

	resp := buildLoanResponse(loan)
	return &resp, nil
}

// ReturnBook: スコア検証 → 利用者存在 → 本の行ロック → (user, book) の
// open貸出を特定 → score確定 → is_available=1。すべて同一Tx。
// 借りていない本・二重返却は open貸出の検索が外れて NOT_FOUND になる。
func (s *Service) ReturnBook(ctx context.Context, userID, bookID int64, score int16) (*LoanResponse, error) {
	if userID <= 0 || bookID <= 0 {
		return nil, apperr.ErrInvalid("user_id and book_id must be positive")
	}
	if score < 1 || score > 10 {
		return nil, apperr.ErrInvalidScore("score must be between 1 and 10")
	}

	now := s.clock.Now()
	var loan *Loan

	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		if _, err := users.GetUserTx(ctx, tx, userID); err != nil {
			return err
		}
		book, err := books.GetBookForUpdateTx(ctx, tx, bookID)
		if err != nil {
			return err
		}
		loan, err = GetOpenLoanTx(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}
		if err := CloseLoanTx(ctx, tx, loan.LoanID, score, now); err != nil {
			return err
		}
		return books.MarkAvailableTx(ctx, tx, book.BookID)
	})
	if err != nil {
		return nil, err
	}

	loan.Score = sql.NullInt16{Int16: score, Valid: true}
	loan.ReturnedAt = sql.NullTime{Time: now, Valid: true}

	// 返却は利用者の貸出一覧と本の平均評価の両方を変える
	s.invalidate(ctx, cache.UserKey(userID), cache.BookKey(bookID))

	resp := buildLoanResponse(loan)
	return &resp, nil
}

func (s *Service) GetLoanByULID(ctx context.Context, ulidStr string) (*LoanResponse, error) {
	if ulidStr == "" {
		return nil, apperr.ErrInvalid("loan_ulid is required")
	}
	loan, err := s.store.GetLoanByULID(ctx, ulidStr)
	if err != nil {
		return nil, err
	}
	resp := buildLoanResponse(loan)
	return &resp, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
