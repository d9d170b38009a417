package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/api/responses"
	"github.com/shopora-app/shopora-backend/internal/catalog"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
	"github.com/shopora-app/shopora-backend/pkg/pagination"
)

// ProductList serves the browseable product grid.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := listParamsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// ProductDetail serves a single product page.
func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// CategoryList serves the category navigation strip.
func CategoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, categories)
	}
}

func listParamsFromQuery(r *http.Request) (catalog.ListParams, error) {
	q := r.URL.Query()

	params := catalog.ListParams{
		Category: strings.TrimSpace(q.Get("category")),
		Query:    strings.TrimSpace(q.Get("q")),
		Brand:    strings.TrimSpace(q.Get("brand")),
		OnSale:   q.Get("onSale") == "true",
		InStock:  q.Get("inStock") == "true",
		NewOnly:  q.Get("new") == "true",
	}

	if raw := strings.TrimSpace(q.Get("shopId")); raw != "" {
		shopID, err := uuid.Parse(raw)
		if err != nil {
			return catalog.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shop id")
		}
		params.ShopID = &shopID
	}

	if raw := q.Get("priceMin"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return catalog.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priceMin")
		}
		params.PriceMin = &v
	}
	if raw := q.Get("priceMax"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return catalog.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priceMax")
		}
		params.PriceMax = &v
	}
	if raw := q.Get("minRating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return catalog.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minRating")
		}
		params.MinRating = &v
	}

	if raw := strings.TrimSpace(q.Get("sort")); raw != "" {
		sortOption, err := enums.ParseSortOption(raw)
		if err != nil {
			return catalog.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
		}
		params.Sort = sortOption
	}

	params.Page = pagination.NormalizePage(intQuery(q.Get("page"), 1), intQuery(q.Get("pageSize"), pagination.DefaultPageSize))
	return params, nil
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
