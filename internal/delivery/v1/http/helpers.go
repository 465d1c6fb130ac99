package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/jimlawless/whereami"
)

// Максимальный размер тела JSON-запроса
const maxBodySize = 1 << 20

// Response — тело любого ответа API. Ошибки валидации и поиска отдаются в поле error,
// конфликты и успешные операции в поле message.
type Response struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func NewMessageResponse(message string) *Response {
	return &Response{Message: message}
}

func NewErrorResponse(message string) *Response {
	return &Response{Error: message}
}

func ToHTTPResponse(err error) (int, *Response) {
	switch {
	case errors.Is(err, e.ErrInvalidJSON):
		return http.StatusBadRequest, NewErrorResponse(e.ErrInvalidJSON.Error())
	case errors.Is(err, e.ErrCategoryRequired):
		return http.StatusBadRequest, NewErrorResponse(e.ErrCategoryRequired.Error())
	case errors.Is(err, e.ErrCategoryAndProductRequired):
		return http.StatusBadRequest, NewErrorResponse(e.ErrCategoryAndProductRequired.Error())
	case errors.Is(err, e.ErrCategoryNotFound):
		return http.StatusNotFound, NewErrorResponse(e.ErrCategoryNotFound.Error())
	case errors.Is(err, e.ErrCategoryAlreadyExists):
		return http.StatusConflict, NewMessageResponse(e.ErrCategoryAlreadyExists.Error())
	case errors.Is(err, e.ErrProductAlreadyExists):
		return http.StatusConflict, NewMessageResponse(e.ErrProductAlreadyExists.Error())
	case errors.Is(err, e.ErrDatabaseUnavailable):
		return http.StatusServiceUnavailable, NewErrorResponse(e.ErrDatabaseUnavailable.Error())
	default:
		return http.StatusInternalServerError, NewErrorResponse(e.ErrInternalServerError.Error())
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, resp := ToHTTPResponse(err)
	WriteSuccess(w, code, resp)
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst; любая ошибка разбора превращается в e.ErrInvalidJSON
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrInvalidJSON, err))
	}

	// После объекта допускаются только пробельные символы
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return e.Wrap(whereami.WhereAmI(), e.ErrInvalidJSON)
	}

	return nil
}
