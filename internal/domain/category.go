package domain

import "time"

// Category описывает категорию верхнего уровня, уникальную по имени
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

func NewCategory(name string) *Category {
	return &Category{
		Name: name,
	}
}
