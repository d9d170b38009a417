package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
	redisclient "github.com/shopora-app/shopora-backend/pkg/redis"
)

type prefStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	PushRecent(ctx context.Context, key, value string, max int64) error
	ListAll(ctx context.Context, key string) ([]string, error)
	RemoveFromList(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}

type prefKeyer interface {
	ViewModeKey(userID string) string
	SearchHistoryKey(userID string) string
}

// Preferences persists the per-user bits of search state that survive a
// reload: the view mode and the recent search terms.
type Preferences struct {
	store        prefStore
	keyer        prefKeyer
	logg         *logger.Logger
	historyLimit int64
}

// NewPreferences builds the preference store on the shared Redis client.
func NewPreferences(client *redisclient.Client, cfg config.SearchConfig, logg *logger.Logger) (*Preferences, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redis client is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	limit := int64(cfg.HistoryLimit)
	if limit <= 0 {
		limit = 10
	}
	return &Preferences{store: client, keyer: client, logg: logg, historyLimit: limit}, nil
}

// SaveViewMode writes the display preference. It has no expiry, the choice
// holds until the user changes it.
func (p *Preferences) SaveViewMode(ctx context.Context, userID uuid.UUID, mode enums.ViewMode) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid view mode")
	}
	if err := p.store.Set(ctx, p.keyer.ViewModeKey(userID.String()), mode.String(), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save view mode")
	}
	return nil
}

// LoadViewMode reads the stored preference. Misses and store failures both
// fall back to grid, a lost preference never blocks the page.
func (p *Preferences) LoadViewMode(ctx context.Context, userID uuid.UUID) enums.ViewMode {
	if userID == uuid.Nil {
		return enums.ViewModeGrid
	}
	raw, err := p.store.Get(ctx, p.keyer.ViewModeKey(userID.String()))
	if err != nil {
		if !errors.Is(err, redisclient.Nil) {
			p.logg.Warn(ctx, "view mode read failed, falling back to grid")
		}
		return enums.ViewModeGrid
	}
	mode, err := enums.ParseViewMode(raw)
	if err != nil {
		return enums.ViewModeGrid
	}
	return mode
}

// RecordSearch pushes a term onto the user's history, most recent first.
// Terms dedupe case-insensitively and the list is capped.
func (p *Preferences) RecordSearch(ctx context.Context, userID uuid.UUID, term string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	key := p.keyer.SearchHistoryKey(userID.String())
	if err := p.store.PushRecent(ctx, key, term, p.historyLimit); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record search term")
	}
	return nil
}

// History returns the recent search terms, most recent first.
func (p *Preferences) History(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	terms, err := p.store.ListAll(ctx, p.keyer.SearchHistoryKey(userID.String()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load search history")
	}
	return terms, nil
}

// ForgetSearch drops one term from the history.
func (p *Preferences) ForgetSearch(ctx context.Context, userID uuid.UUID, term string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	key := p.keyer.SearchHistoryKey(userID.String())
	if err := p.store.RemoveFromList(ctx, key, term); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "forget search term")
	}
	return nil
}

// ClearHistory drops the whole history.
func (p *Preferences) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := p.store.Del(ctx, p.keyer.SearchHistoryKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear search history")
	}
	return nil
}
