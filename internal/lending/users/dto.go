package users

// 利用者登録リクエスト
type CreateUserRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

type CreateUserResponse struct {
	UserID int64 `json:"id"`
}

type UserSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookEntry は読み取りビュー内の1冊。
// past（返却済み）は userScore 付き、present（貸出中）は書名のみ。
type BookEntry struct {
	Name      string `json:"name"`
	UserScore *int16 `json:"userScore,omitempty"`
}

type UserBooks struct {
	Past    []BookEntry `json:"past"`
	Present []BookEntry `json:"present"`
}

// UserWithBooks は user:<id> にキャッシュされる読み取りビュー。
type UserWithBooks struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Books UserBooks `json:"books"`
}
