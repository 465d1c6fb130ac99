package converter

// CategoryRedisModel — значение ключа category:<name> в Redis.
type CategoryRedisModel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewCategoryRedisModel(id int64, name string) *CategoryRedisModel {
	return &CategoryRedisModel{
		ID:   id,
		Name: name,
	}
}
