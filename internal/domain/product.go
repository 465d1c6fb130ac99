package domain

import "time"

// Product описывает продукт, уникальный по паре (имя, категория)
type Product struct {
	ID         int64
	Name       string
	CategoryID int64
	CreatedAt  time.Time
}

func NewProduct(name string, categoryID int64) *Product {
	return &Product{
		Name:       name,
		CategoryID: categoryID,
	}
}
