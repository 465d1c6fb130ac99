package http

import (
	"errors"
	"net/http"

	"github.com/DRSN-tech/catalog-api/internal/usecase"
	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
)

type AddCategoryRequest struct {
	Category string `json:"category" example:"Fruits"`
}

type AddProductRequest struct {
	Category string `json:"category" example:"Fruits"`
	Product  string `json:"product" example:"Apple"`
}

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, logger: logger}
}

// addCategory
//
//	@Summary		Добавление категории
//	@Description	Создает категорию с уникальным именем. Пробелы по краям имени отбрасываются
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AddCategoryRequest	true	"Категория"
//	@Success		201		{object}	Response			"Category added successfully"
//	@Failure		400		{object}	Response			"Ошибка валидации"
//	@Failure		409		{object}	Response			"Category already exists"
//	@Failure		500		{object}	Response			"Internal server error"
//	@Router			/addCategory [post]
func (h *CatalogHandler) addCategory(w http.ResponseWriter, r *http.Request) {
	var req AddCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	category, err := h.catalogUsecase.AddCategory(r.Context(), usecase.NewAddCategoryReq(req.Category))
	if err != nil {
		h.logError(r, err)
		WriteError(w, err)
		return
	}

	h.logger.Debugf("category %q created with id %d", category.Name, category.ID)
	WriteSuccess(w, http.StatusCreated, NewMessageResponse("Category added successfully"))
}

// addProduct
//
//	@Summary		Добавление продукта
//	@Description	Создает продукт в существующей категории. Имя продукта уникально в пределах категории
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AddProductRequest	true	"Категория и продукт"
//	@Success		201		{object}	Response			"Product added successfully"
//	@Failure		400		{object}	Response			"Ошибка валидации"
//	@Failure		404		{object}	Response			"Category does not exist"
//	@Failure		409		{object}	Response			"Product already exists in category"
//	@Failure		500		{object}	Response			"Internal server error"
//	@Router			/addProduct [post]
func (h *CatalogHandler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	product, err := h.catalogUsecase.AddProduct(r.Context(), usecase.NewAddProductReq(req.Category, req.Product))
	if err != nil {
		h.logError(r, err)
		WriteError(w, err)
		return
	}

	h.logger.Debugf("product %q created in category %d with id %d", product.Name, product.CategoryID, product.ID)
	WriteSuccess(w, http.StatusCreated, NewMessageResponse("Product added successfully"))
}

// logError пишет бизнес-ошибки в warn, а неожиданные в error
func (h *CatalogHandler) logError(r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code == http.StatusInternalServerError && !errors.Is(err, e.ErrInternalServerError) {
		h.logger.Errorf(err, "%s %s failed", r.Method, r.URL.Path)
		return
	}
	h.logger.Warnf("%d %s: %v", code, r.URL.Path, err)
}
