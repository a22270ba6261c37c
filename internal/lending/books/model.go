package books

// Book は books テーブルの1行を表す
type Book struct {
	BookID      int64
	Name        string
	IsAvailable bool
}
