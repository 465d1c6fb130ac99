package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки поиска, не отдаются клиенту как есть
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrCacheMiss       = fmt.Errorf("cache miss")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrInvalidJSON                = fmt.Errorf("Invalid JSON body")
	ErrCategoryRequired           = fmt.Errorf("Category is required")
	ErrCategoryAndProductRequired = fmt.Errorf("Both category and product are required")

	// 404 Not Found
	ErrCategoryNotFound = fmt.Errorf("Category does not exist")

	// 409 Conflict
	ErrCategoryAlreadyExists = fmt.Errorf("Category already exists")
	ErrProductAlreadyExists  = fmt.Errorf("Product already exists in category")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("Internal server error")

	// 503 Service Unavailable
	ErrDatabaseUnavailable = fmt.Errorf("Database unavailable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
