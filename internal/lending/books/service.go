package books

import (
	"context"
	"database/sql"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"biblio-backend/internal/platform/apperr"
	"biblio-backend/internal/platform/cache"
)

var json = jsoniter.ConfigFastest

type Service struct {
	db    *sql.DB
	store *Store
	cache cache.Store
	log   *zap.Logger
}

func NewService(db *sql.DB, cs cache.Store, log *zap.Logger) *Service {
	return &Service{
		db:    db,
		store: NewStore(db),
		cache: cs,
		log:   log,
	}
}

func (s *Service) CreateBook(ctx context.Context, req CreateBookRequest) (*CreateBookResponse, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 50 {
		return nil, apperr.ErrInvalid("name must be 2-50 characters")
	}

	id, err := s.store.InsertBook(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CreateBookResponse{BookID: id}, nil
}

func (s *Service) ListBooks(ctx context.Context) ([]BookSummary, error) {
	out, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []BookSummary{}
	}
	return out, nil
}

// GetBookWithRating は cache-aside の読み取り。
// ヒットすればそのまま返す（鮮度チェックなし）。ミスならDBから組み立てて
// 書き戻す。無効化はここではやらない（書き込み側=loansの責務）。
func (s *Service) GetBookWithRating(ctx context.Context, bookID int64) (*BookWithRating, error) {
	key := cache.BookKey(bookID)

	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		// キャッシュ障害はミス扱いでDBへフォールバック
		s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v BookWithRating
		if err := json.Unmarshal(b, &v); err == nil {
			s.log.Debug("book returned from cache", zap.String("key", key))
			return &v, nil
		}
		s.log.Warn("broken cache entry, rebuilding", zap.String("key", key))
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	scores, err := s.store.GetClosedScores(ctx, bookID)
	if err != nil {
		return nil, err
	}

	v := BookWithRating{
		ID:    book.BookID,
		Name:  book.Name,
		Score: AverageScore(scores),
	}

	if b, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, b); err != nil {
			s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return &v, nil
}
