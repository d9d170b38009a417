package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/api/middleware"
	"github.com/shopora-app/shopora-backend/api/responses"
	"github.com/shopora-app/shopora-backend/api/validators"
	"github.com/shopora-app/shopora-backend/internal/catalog"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
)

type productRequest struct {
	ShopID         uuid.UUID `json:"shopId" validate:"required"`
	Category       string    `json:"category" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Description    *string   `json:"description,omitempty"`
	ImageURL       *string   `json:"imageUrl,omitempty"`
	Brand          *string   `json:"brand,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	Colors         []string  `json:"colors,omitempty"`
	Sizes          []string  `json:"sizes,omitempty"`
	PriceCents     int       `json:"priceCents" validate:"required,min=0"`
	SalePriceCents *int      `json:"salePriceCents,omitempty" validate:"omitempty,min=0"`
	Currency       string    `json:"currency,omitempty"`
	Stock          int       `json:"stock" validate:"min=0"`
	IsNew          bool      `json:"isNew"`
	IsActive       bool      `json:"isActive"`
}

func (r productRequest) toInput() catalog.ProductInput {
	return catalog.ProductInput{
		ShopID:         r.ShopID,
		CategoryName:   r.Category,
		Name:           r.Name,
		Description:    r.Description,
		ImageURL:       r.ImageURL,
		Brand:          r.Brand,
		Tags:           r.Tags,
		Colors:         r.Colors,
		Sizes:          r.Sizes,
		PriceCents:     r.PriceCents,
		SalePriceCents: r.SalePriceCents,
		Currency:       r.Currency,
		Stock:          r.Stock,
		IsNew:          r.IsNew,
		IsActive:       r.IsActive,
	}
}

// AdminCreateProduct handles product creation from the admin panel.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), actor, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct handles full product updates from the admin panel.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), actor, productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct retires a product from the storefront.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.DeleteProduct(r.Context(), actor, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func actorFromContext(r *http.Request) (catalog.Actor, error) {
	userID, err := actorID(r)
	if err != nil {
		return catalog.Actor{}, err
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return catalog.Actor{}, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "unknown role")
	}
	return catalog.Actor{UserID: userID, Role: role}, nil
}
