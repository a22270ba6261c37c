package books

// 蔵書登録リクエスト
type CreateBookRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

type CreateBookResponse struct {
	BookID int64 `json:"id"`
}

// 一覧用
type BookSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookWithRating は book:<id> にキャッシュされる読み取りビュー。
// score は閉じた貸出の平均。未評価なら -1。
type BookWithRating struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
