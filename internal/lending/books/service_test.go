package books

import (
	"context"
	"regexp"
	"testing"

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

func TestGetBookWithRating_CacheMissThenHit(t *testing.T) {
	svc, mock, mem := newTestService(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT book_id, name, is_available FROM books WHERE book_id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "name", "is_available"}).AddRow(1, "Dune", true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT score FROM loans WHERE book_id = ? AND score IS NOT NULL")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"score"}).AddRow(8).AddRow(9))

	got, err := svc.GetBookWithRating(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, &BookWithRating{ID: 1, Name: "Dune", Score: 8.5}, got)
	require.Equal(t, 1, mem.Len())

	// 2回目はキャッシュから。DBへの期待は追加していないので、
	// クエリが飛べば ExpectationsWereMet が落ちる。
	again, err := svc.GetBookWithRating(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, got, again)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookWithRating_NoClosedLoansIsUnrated(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT book_id, name, is_available FROM books WHERE book_id = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "name", "is_available"}).AddRow(7, "Solaris", false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT score FROM loans WHERE book_id = ? AND score IS NOT NULL")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"score"}))

	got, err := svc.GetBookWithRating(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, float64(-1), got.Score)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookWithRating_NotFound(t *testing.T) {
	svc, mock, mem := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT book_id, name, is_available FROM books WHERE book_id = ?")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "name", "is_available"}))

	_, err := svc.GetBookWithRating(context.Background(), 99)
	require.Error(t, err)
	require.Equal(t, 404, apperr.ToHTTPStatus(err))
	// 失敗時はキャッシュに何も書かない
	require.Equal(t, 0, mem.Len())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBook_Validation(t *testing.T) {
	svc, mock, _ := newTestService(t)

	_, err := svc.CreateBook(context.Background(), CreateBookRequest{Name: "a"})
	require.Error(t, err)
	require.Equal(t, 400, apperr.ToHTTPStatus(err))

	require.NoError(t, mock.ExpectationsWereMet())
}
