package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/patelpulse/pulse-backend/api/responses"
	"github.com/patelpulse/pulse-backend/api/validators"
	productsvc "github.com/patelpulse/pulse-backend/internal/products"
	"github.com/patelpulse/pulse-backend/pkg/logger"
)

// ListProducts returns active shop products.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListActive(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetProduct returns an active product by slug.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		slug, err := validators.SlugParam(r, "slug")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetActive(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminCreateProduct handles product creation from the back office.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		var payload createProductRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AdminRecomputeRating runs the rating aggregator synchronously for one product.
func AdminRecomputeRating(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.RecomputeRating(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type createProductRequest struct {
	Slug         string          `json:"slug" validate:"omitempty,max=80"`
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description" validate:"max=20000"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency" validate:"omitempty,len=3"`
	ImageURL     *string         `json:"imageUrl,omitempty" validate:"omitempty,url"`
	DownloadLink *string         `json:"downloadLink,omitempty" validate:"omitempty,url"`
	IsDigital    bool            `json:"isDigital"`
	IsActive     *bool           `json:"isActive,omitempty"`
}

func (p createProductRequest) toInput() productsvc.CreateProductInput {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return productsvc.CreateProductInput{
		Slug:         validators.SanitizeString(p.Slug, 80),
		Title:        validators.SanitizeString(p.Title, 200),
		Description:  p.Description,
		Price:        p.Price,
		Currency:     p.Currency,
		ImageURL:     p.ImageURL,
		DownloadLink: p.DownloadLink,
		IsDigital:    p.IsDigital,
		IsActive:     active,
	}
}

type updateProductRequest struct {
	Slug         *string          `json:"slug,omitempty" validate:"omitempty,max=80"`
	Title        *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description,omitempty" validate:"omitempty,max=20000"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Currency     *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	ImageURL     *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	DownloadLink *string          `json:"downloadLink,omitempty" validate:"omitempty,url"`
	IsDigital    *bool            `json:"isDigital,omitempty"`
	IsActive     *bool            `json:"isActive,omitempty"`
}

func (p updateProductRequest) toInput() productsvc.UpdateProductInput {
	return productsvc.UpdateProductInput{
		Slug:         p.Slug,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		Currency:     p.Currency,
		ImageURL:     p.ImageURL,
		DownloadLink: p.DownloadLink,
		IsDigital:    p.IsDigital,
		IsActive:     p.IsActive,
	}
}
