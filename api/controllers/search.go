package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/api/responses"
	"github.com/shopora-app/shopora-backend/api/validators"
	"github.com/shopora-app/shopora-backend/internal/catalog"
	searchsvc "github.com/shopora-app/shopora-backend/internal/search"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
	"github.com/shopora-app/shopora-backend/pkg/pagination"
)

type viewModeRequest struct {
	ViewMode string `json:"viewMode" validate:"required"`
}

// SearchProducts runs the full filter pipeline over the catalog. The database
// narrows by text and shop; the filter state owns the rest of the predicates,
// the sort, and the paging so results match what the storefront chips show.
func SearchProducts(catalogSvc catalog.Service, prefs *searchsvc.Preferences, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		state, err := filterStateFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewer := viewerID(r)
		if prefs != nil && viewer != uuid.Nil {
			if r.URL.Query().Get("view") == "" {
				state = state.SetViewMode(prefs.LoadViewMode(r.Context(), viewer))
			}
			if state.Query != "" {
				if err := prefs.RecordSearch(r.Context(), viewer, state.Query); err != nil && logg != nil {
					logg.Warn(logg.WithUserID(r.Context(), viewer.String()), "recording search term failed")
				}
			}
		}

		candidates, err := catalogSvc.ListProducts(r.Context(), catalog.ListParams{
			Query:  state.Query,
			ShopID: state.Shop,
			Page:   pagination.NormalizePage(1, pagination.MaxLimit),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := state.Apply(candidates.Items)

		responses.WriteSuccess(w, map[string]any{
			"results":  result,
			"viewMode": state.ViewMode,
		})
	}
}

// ViewModeGet returns the caller's saved grid/list preference.
func ViewModeGet(prefs *searchsvc.Preferences, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if prefs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]enums.ViewMode{"viewMode": prefs.LoadViewMode(r.Context(), userID)})
	}
}

// ViewModeSet persists a grid/list preference across sessions.
func ViewModeSet(prefs *searchsvc.Preferences, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if prefs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload viewModeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseViewMode(payload.ViewMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid view mode"))
			return
		}

		if err := prefs.SaveViewMode(r.Context(), userID, mode); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]enums.ViewMode{"viewMode": mode})
	}
}

// SearchHistory returns the caller's recent search terms, most recent first.
func SearchHistory(prefs *searchsvc.Preferences, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if prefs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		terms, err := prefs.History(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string][]string{"terms": terms})
	}
}

// SearchHistoryForget removes a single term from the history.
func SearchHistoryForget(prefs *searchsvc.Preferences, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if prefs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		term := strings.TrimSpace(r.URL.Query().Get("term"))
		if term == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing term"))
			return
		}

		if err := prefs.ForgetSearch(r.Context(), userID, term); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "forgotten"})
	}
}

// SearchHistoryClear wipes the caller's search history.
func SearchHistoryClear(prefs *searchsvc.Preferences, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if prefs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := prefs.ClearHistory(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func filterStateFromQuery(r *http.Request) (searchsvc.FilterState, error) {
	q := r.URL.Query()
	state := searchsvc.NewFilterState()

	if v := strings.TrimSpace(q.Get("q")); v != "" {
		state = state.SetQuery(v)
	}

	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return searchsvc.FilterState{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		state = state.SetCategory(&categoryID)
	}

	if raw := strings.TrimSpace(q.Get("shopId")); raw != "" {
		shopID, err := uuid.Parse(raw)
		if err != nil {
			return searchsvc.FilterState{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shop id")
		}
		state = state.SetShop(&shopID)
	}

	if q.Get("priceMin") != "" || q.Get("priceMax") != "" {
		minCents := intQuery(q.Get("priceMin"), searchsvc.DefaultPriceMinCents)
		maxCents := intQuery(q.Get("priceMax"), searchsvc.DefaultPriceMaxCents)
		state = state.SetPriceRange(minCents, maxCents)
	}

	if raw := q.Get("minRating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return searchsvc.FilterState{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minRating")
		}
		state = state.SetMinRating(&rating)
	}

	if raw := strings.TrimSpace(q.Get("sort")); raw != "" {
		sortOption, err := enums.ParseSortOption(raw)
		if err != nil {
			return searchsvc.FilterState{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
		}
		state = state.SetSort(sortOption)
	}

	if q.Get("inStock") == "true" {
		state = state.SetInStockOnly(true)
	}
	if q.Get("onSale") == "true" {
		state = state.SetOnSaleOnly(true)
	}

	for _, brand := range q["brand"] {
		if brand = strings.TrimSpace(brand); brand != "" {
			state = state.SetBrand(brand, true)
		}
	}

	if raw := strings.TrimSpace(q.Get("view")); raw != "" {
		mode, err := enums.ParseViewMode(raw)
		if err != nil {
			return searchsvc.FilterState{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid view mode")
		}
		state = state.SetViewMode(mode)
	}

	state = state.SetPageSize(intQuery(q.Get("pageSize"), state.PageSize))
	state = state.SetPage(intQuery(q.Get("page"), 1))
	return state, nil
}
