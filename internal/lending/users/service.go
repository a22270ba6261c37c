package users

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

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*CreateUserResponse, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 50 {
		return nil, apperr.ErrInvalid("name must be 2-50 characters")
	}

	id, err := s.store.InsertUser(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CreateUserResponse{UserID: id}, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	out, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []UserSummary{}
	}
	return out, nil
}

// GetUserWithBooks は cache-aside の読み取り。
// ヒットすればデシリアライズしてそのまま返す。ミスならJOINで引いて
// past/present に仕分けし、書き戻してから返す。
func (s *Service) GetUserWithBooks(ctx context.Context, userID int64) (*UserWithBooks, error) {
	key := cache.UserKey(userID)

	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v UserWithBooks
		if err := json.Unmarshal(b, &v); err == nil {
			s.log.Debug("user returned from cache", zap.String("key", key))
			return &v, nil
		}
		s.log.Warn("broken cache entry, rebuilding", zap.String("key", key))
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	loans, err := s.store.GetUserLoans(ctx, userID)
	if err != nil {
		return nil, err
	}

	v := buildUserWithBooks(user, loans)

	if b, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, b); err != nil {
			s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return &v, nil
}

// buildUserWithBooks は貸出行を past（score確定）/ present（score未確定）に仕分ける。
// 空でもJSONが null にならないよう空スライスで初期化する。
func buildUserWithBooks(user *User, loans []LoanRow) UserWithBooks {
	past := []BookEntry{}
	present := []BookEntry{}

	for _, l := range loans {
		if l.Score.Valid {
			sc := l.Score.Int16
			past = append(past, BookEntry{Name: l.BookName, UserScore: &sc})
		} else {
			present = append(present, BookEntry{Name: l.BookName})
		}
	}

	return UserWithBooks{
		ID:   user.UserID,
		Name: user.Name,
		Books: UserBooks{
			Past:    past,
			Present: present,
		},
	}
}
