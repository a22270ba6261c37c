package loans

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biblio-backend/internal/platform/apperr"
	"biblio-backend/internal/platform/cache"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *cache.Memory) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mem := cache.NewMemory()
	return NewService(db, mem, zap.NewNop()), mock, mem
}

var (
	selectUserQ     = regexp.QuoteMeta("SELECT user_id, name FROM users WHERE user_id = ?")
	selectBookQ     = regexp.QuoteMeta("SELECT book_id, name, is_available FROM books WHERE book_id = ? FOR UPDATE")
	insertLoanQ     = regexp.QuoteMeta("INSERT INTO loans (loan_ulid, user_id, book_id, borrowed_at)")
	updateBookQ     = regexp.QuoteMeta("UPDATE books SET is_available = ? WHERE book_id = ?")
	selectOpenLoanQ = regexp.QuoteMeta("AND score IS NULL LIMIT 1 FOR UPDATE")
	closeLoanQ      = regexp.QuoteMeta("UPDATE loans SET score = ?, returned_at = ? WHERE loan_id = ?")
)

func userRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "name"}).AddRow(1, "Alice")
}

func bookRow(available bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"book_id", "name", "is_available"}).AddRow(1, "Dune", available)
}

func TestBorrowBook_Success(t *testing.T) {
	svc, mock, mem := newTestService(t)
	ctx := context.Background()

	// 無効化対象のキーを事前に置いておく
	require.NoError(t, mem.Set(ctx, cache.UserKey(1), []byte(`{}`)))
	require.NoError(t, mem.Set(ctx, cache.BookKey(1), []byte(`{}`)))

	mock.ExpectBegin()
	mock.ExpectQuery(selectUserQ).WithArgs(int64(1)).WillReturnRows(userRow())
	mock.ExpectQuery(selectBookQ).WithArgs(int64(1)).WillReturnRows(bookRow(true))
	mock.ExpectExec(insertLoanQ).WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(updateBookQ).WithArgs(false, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.BorrowBook(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, int64(10), res.LoanID)
	require.NotEmpty(t, res.LoanULID)
	require.Nil(t, res.Score)

	// user:<id> は無効化され、book:<id> は残る（評価ビューは変わらないため）
	_, ok, _ := mem.Get(ctx, cache.UserKey(1))
	require.False(t, ok)
	_, ok, _ = mem.Get(ctx, cache.BookKey(1))
	require.True(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowBook_NotAvailable(t *testing.T) {
	svc, mock, mem := newTestService(t)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, cache.UserKey(1), []byte(`{}`)))

	mock.ExpectBegin()
	mock.ExpectQuery(selectUserQ).WithArgs(int64(1)).WillReturnRows(userRow())
	mock.ExpectQuery(selectBookQ).WithArgs(int64(1)).WillReturnRows(bookRow(false))
	mock.ExpectRollback()

	_, err := svc.BorrowBook(ctx, 1, 1)
	require.Error(t, err)
	require.Equal(t, 409, apperr.ToHTTPStatus(err))

	// 失敗時は貸出行も作られずキャッシュも触らない
	_, ok, _ := mem.Get(ctx, cache.UserKey(1))
	require.True(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowBook_UserNotFound(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectUserQ).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name"}))
	mock.ExpectRollback()

	_, err := svc.BorrowBook(context.Background(), 5, 1)
	require.Error(t, err)
	require.Equal(t, 404, apperr.ToHTTPStatus(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnBook_Success(t *testing.T) {
	svc, mock, mem := newTestService(t)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, cache.UserKey(1), []byte(`{}`)))
	require.NoError(t, mem.Set(ctx, cache.BookKey(1), []byte(`{}`)))

	openLoan := sqlmock.NewRows([]string{"loan_id", "loan_ulid", "user_id", "book_id", "score", "borrowed_at", "returned_at"}).
		AddRow(10, "01ARZ3NDEKTSV4RRFFQ69G5FAV", 1, 1, nil, time.Now().UTC(), nil)

	mock.ExpectBegin()
	mock.ExpectQuery(selectUserQ).WithArgs(int64(1)).WillReturnRows(userRow())
	mock.ExpectQuery(selectBookQ).WithArgs(int64(1)).WillReturnRows(bookRow(false))
	mock.ExpectQuery(selectOpenLoanQ).WithArgs(int64(1), int64(1)).WillReturnRows(openLoan)
	mock.ExpectExec(closeLoanQ).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateBookQ).WithArgs(true, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.ReturnBook(ctx, 1, 1, 9)
	require.NoError(t, err)
	require.NotNil(t, res.Score)
	require.Equal(t, int16(9), *res.Score)
	require.NotNil(t, res.ReturnedAt)

	// 返却は user と book の両キーを無効化する
	require.Equal(t, 0, mem.Len())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnBook_InvalidScore(t *testing.T) {
	svc, mock, _ := newTestService(t)

	for _, score := range []int16{0, 11, -3} {
		_, err := svc.ReturnBook(context.Background(), 1, 1, score)
		require.Error(t, err)
		require.Equal(t, 400, apperr.ToHTTPStatus(err))
	}

	// 検証はいかなる書き込みよりも先。DBには一切触れない。
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnBook_NoOpenLoan(t *testing.T) {
	svc, mock, mem := newTestService(t)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, cache.UserKey(1), []byte(`{}`)))

	mock.ExpectBegin()
	mock.ExpectQuery(selectUserQ).WithArgs(int64(1)).WillReturnRows(userRow())
	mock.ExpectQuery(selectBookQ).WithArgs(int64(1)).WillReturnRows(bookRow(true))
	mock.ExpectQuery(selectOpenLoanQ).WithArgs(int64(1), int64(1)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.ReturnBook(ctx, 1, 1, 9)
	require.Error(t, err)
	require.Equal(t, 404, apperr.ToHTTPStatus(err))

	// 何も変異していないのでキャッシュもそのまま
	_, ok, _ := mem.Get(ctx, cache.UserKey(1))
	require.True(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}
