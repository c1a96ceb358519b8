package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/shindakun/csmarket/internal/auth"
	"github.com/shindakun/csmarket/internal/exporter"
	"github.com/shindakun/csmarket/internal/market"
	"github.com/shindakun/csmarket/internal/storage"
	"github.com/shindakun/csmarket/internal/version"
	"github.com/shindakun/csmarket/internal/web/ui"
)

const (
	pricesPageSize = 50

	// nginx's status for a client that went away before the response
	statusClientClosedRequest = 499
)

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	db        *sql.DB
	login     *auth.LoginManager
	updater   *market.Updater
	inventory *market.InventoryService
	logger    *zap.Logger
	pages     map[string]*template.Template
	static    http.Handler
	version   string
}

// New creates a new Handlers instance.
// updater and inventory may be nil when those features are disabled.
func New(db *sql.DB, login *auth.LoginManager, updater *market.Updater, inventory *market.InventoryService, logger *zap.Logger) (*Handlers, error) {
	pages, err := parseTemplates(ui.Templates())
	if err != nil {
		return nil, err
	}

	return &Handlers{
		db:        db,
		login:     login,
		updater:   updater,
		inventory: inventory,
		logger:    logger,
		pages:     pages,
		static:    http.StripPrefix("/static/", http.FileServer(http.FS(ui.Static()))),
		version:   version.GetVersion(),
	}, nil
}

// Landing sends visitors to the auth page
func (h *Handlers) Landing(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

// AuthPage renders the login card with the provider buttons
func (h *Handlers) AuthPage(w http.ResponseWriter, r *http.Request) {
	data := TemplateData{
		Auth: h.login.PageData(),
	}

	if err := h.renderTemplate(w, http.StatusOK, "auth", data); err != nil {
		h.logger.Error("error rendering auth template", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// SteamLogin redirects to the backend Steam login
func (h *Handlers) SteamLogin(w http.ResponseWriter, r *http.Request) {
	h.login.HandleSteamLogin(w, r)
}

// Prices renders the searchable price catalog
func (h *Handlers) Prices(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	skins, err := storage.SearchSkins(h.db, query, page, pricesPageSize)
	if err != nil {
		h.logger.Error("error searching skins", zap.Error(err), zap.String("query", query))
		h.RenderError(w, r)
		return
	}

	latest, err := storage.GetLatestPriceSync(h.db)
	if err != nil {
		// Continue anyway, just don't show sync status
		h.logger.Warn("error fetching latest price sync", zap.Error(err))
		latest = nil
	}

	data := TemplateData{
		Skins:      skins,
		LatestSync: latest,
		Query:      query,
		CSRFField:  csrf.TemplateField(r),
	}
	if r.URL.Query().Get("refresh") == "started" {
		data.Message = "Обновление цен запущено"
	}

	if err := h.renderTemplate(w, http.StatusOK, "prices", data); err != nil {
		h.logger.Error("error rendering prices template", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// PricesRefresh starts a background price sync
func (h *Handlers) PricesRefresh(w http.ResponseWriter, r *http.Request) {
	if h.updater == nil {
		http.Error(w, "Price sync is disabled", http.StatusServiceUnavailable)
		return
	}

	syncID, err := h.updater.Trigger()
	if errors.Is(err, market.ErrSyncInProgress) {
		http.Error(w, "Price sync already in progress", http.StatusConflict)
		return
	}
	if errors.Is(err, market.ErrUpdaterClosed) {
		http.Error(w, "Price sync is shutting down", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		h.logger.Error("failed to start price sync", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("price sync triggered", zap.String("sync_id", syncID))
	http.Redirect(w, r, "/prices?refresh=started", http.StatusSeeOther)
}

// PricesExport downloads the whole catalog as CSV or JSON
func (h *Handlers) PricesExport(w http.ResponseWriter, r *http.Request) {
	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.NotFound(w, r)
		return
	}

	skins, err := storage.ListSkins(h.db)
	if err != nil {
		h.logger.Error("error listing skins for export", zap.Error(err))
		h.RenderError(w, r)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, format, skins); err != nil {
		h.logger.Error("error encoding export", zap.Error(err), zap.String("format", string(format)))
		h.RenderError(w, r)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Inventory returns the listable, priced items of a Steam account
func (h *Handlers) Inventory(w http.ResponseWriter, r *http.Request) {
	if h.inventory == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Сервис инвентаря недоступен")
		return
	}

	steamID := chi.URLParam(r, "steamID")

	items, err := h.inventory.Marketable(r.Context(), steamID)
	switch {
	case errors.Is(err, market.ErrInvalidSteamID):
		writeJSONError(w, http.StatusBadRequest, "Некорректный SteamID")
		return
	case errors.Is(err, market.ErrInventoryPrivate):
		writeJSONError(w, http.StatusForbidden, "Инвентарь скрыт настройками приватности")
		return
	case errors.Is(err, market.ErrRateLimited):
		h.TooManyRequests(w, r)
		return
	case errors.Is(err, context.Canceled):
		h.logger.Debug("inventory request cancelled", zap.String("steam_id", steamID))
		w.WriteHeader(statusClientClosedRequest)
		return
	case err != nil:
		h.logger.Error("error fetching inventory", zap.Error(err), zap.String("steam_id", steamID))
		writeJSONError(w, http.StatusBadGateway, "Ошибка получения инвентаря")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"inventory": items})
}

// TooManyRequests answers API calls that hit a rate limit
func (h *Handlers) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusTooManyRequests, "Слишком много запросов, попробуйте позже")
}

// Healthz reports whether the database is reachable
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// ServeStatic serves embedded static files
func (h *Handlers) ServeStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/static/")
	if name == "" || strings.HasSuffix(name, "/") {
		h.NotFound(w, r)
		return
	}
	if _, err := fs.Stat(ui.Static(), name); err != nil {
		h.NotFound(w, r)
		return
	}

	h.static.ServeHTTP(w, r)
}

// NotFound renders the 404 error page
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if err := h.renderTemplate(w, http.StatusNotFound, "404", TemplateData{}); err != nil {
		h.logger.Error("error rendering 404 template", zap.Error(err))
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

// RenderError renders the 500 error page
func (h *Handlers) RenderError(w http.ResponseWriter, r *http.Request) {
	if err := h.renderTemplate(w, http.StatusInternalServerError, "500", TemplateData{}); err != nil {
		h.logger.Error("error rendering 500 template", zap.Error(err), zap.String("path", r.URL.Path))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes the {"error": "..."} body used by every API endpoint
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
