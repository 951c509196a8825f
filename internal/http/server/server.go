package server

import (
	"context"
	"docshare/internal/config"
	"docshare/internal/http/handlers/docs"
	"docshare/internal/http/handlers/grants"
	"docshare/internal/http/handlers/session"
	"docshare/internal/http/handlers/shares"
	"docshare/internal/http/handlers/user"
	"docshare/internal/http/middleware"
	"docshare/internal/models"
	utils "docshare/internal/utils/http_errors"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func StartServer(
	ctx context.Context,
	cfg *config.HTTPServer,
	log *slog.Logger,
	authService AuthService,
	documentService DocumentService,
	sharingService SharingService,
) error {
	srv := &http.Server{
		Addr:         cfg.Address,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
		Handler:      NewRouter(log, cfg.MaxUpload, authService, documentService, sharingService),
	}

	errChan := make(chan error, 1)

	go func() {
		log.Info("server started", slog.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info("server closed gracefully")
			} else {
				log.Error("could not start server:", "error", err)
				errChan <- err
			}
		}
	}()
	select {
	case <-ctx.Done():
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down server", "error", err)
			return err
		}
		log.Info("server exited gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

func NewRouter(log *slog.Logger, maxUpload int64, auth AuthService, doc DocumentService, sharing SharingService) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.ClientInfo)
	r.Use(middleware.Logger(log))

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	setupAuthRoutes(r, log, auth)

	// Routes with fixed segments under /api/docs/ are registered on the
	// protected router first so that {id} does not swallow them.
	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.Auth(log, auth))
	setupProtectedRoutes(protected, log, maxUpload, doc, sharing)

	open := r.NewRoute().Subrouter()
	open.Use(middleware.OptionalAuth(log, auth))
	setupPublicRoutes(open, log, doc)

	// Not allowed
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, models.ErrMethodNotAllowed)
	})

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, models.ErrNotFound)
	})

	return r
}

func setupAuthRoutes(r *mux.Router, log *slog.Logger, auth AuthService) {
	// POST user
	r.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
		user.Add(r.Context(), log, w, r, auth)
	}).Methods(http.MethodPost)

	// POST session
	r.HandleFunc("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		session.Add(r.Context(), log, w, r, auth)
	}).Methods(http.MethodPost)

	// DELETE session
	r.HandleFunc("/api/auth/{token}", func(w http.ResponseWriter, r *http.Request) {
		session.Delete(r.Context(), log, w, r, mux.Vars(r)["token"], auth)
	}).Methods(http.MethodDelete)
}

func setupPublicRoutes(r *mux.Router, log *slog.Logger, doc DocumentService) {
	// GET public docs
	r.HandleFunc("/api/public/docs", func(w http.ResponseWriter, r *http.Request) {
		docs.Public(r.Context(), log, w, r, doc)
	}).Methods(http.MethodGet)

	// GET doc by id
	r.HandleFunc("/api/docs/{id}", func(w http.ResponseWriter, r *http.Request) {
		docs.GetByID(r.Context(), log, w, r, mux.Vars(r)["id"], doc)
	}).Methods(http.MethodGet)

	// HEAD doc by id
	r.HandleFunc("/api/docs/{id}", func(w http.ResponseWriter, r *http.Request) {
		docs.HeadByID(r.Context(), log, w, r, mux.Vars(r)["id"], doc)
	}).Methods(http.MethodHead)

	// GET doc content
	r.HandleFunc("/api/docs/{id}/download", func(w http.ResponseWriter, r *http.Request) {
		docs.Download(r.Context(), log, w, r, mux.Vars(r)["id"], doc)
	}).Methods(http.MethodGet)
}

func setupProtectedRoutes(r *mux.Router, log *slog.Logger, maxUpload int64, doc DocumentService, sharing SharingService) {
	// POST doc
	r.HandleFunc("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		docs.Upload(r.Context(), log, w, r, maxUpload, doc)
	}).Methods(http.MethodPost)

	// GET docs
	r.HandleFunc("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		docs.Get(r.Context(), log, w, r, doc)
	}).Methods(http.MethodGet)

	// HEAD docs
	r.HandleFunc("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		docs.Head(r.Context(), log, w, r, doc)
	}).Methods(http.MethodHead)

	// GET owned and shared docs
	r.HandleFunc("/api/docs/mine", func(w http.ResponseWriter, r *http.Request) {
		docs.Mine(r.Context(), log, w, r, doc)
	}).Methods(http.MethodGet)

	// PATCH doc
	r.HandleFunc("/api/docs/{id}", func(w http.ResponseWriter, r *http.Request) {
		docs.Update(r.Context(), log, w, r, mux.Vars(r)["id"], doc)
	}).Methods(http.MethodPatch)

	// DELETE doc (soft)
	r.HandleFunc("/api/docs/{id}", func(w http.ResponseWriter, r *http.Request) {
		docs.Delete(r.Context(), log, w, r, mux.Vars(r)["id"], doc)
	}).Methods(http.MethodDelete)

	// POST restore doc
	r.HandleFunc("/api/docs/{id}/restore", func(w http.ResponseWriter, r *http.Request) {
		docs.Restore(r.Context(), log, w, r, mux.Vars(r)["id"], doc)
	}).Methods(http.MethodPost)

	// DELETE doc permanently
	r.HandleFunc("/api/docs/{id}/purge", func(w http.ResponseWriter, r *http.Request) {
		docs.Purge(r.Context(), log, w, r, mux.Vars(r)["id"], doc)
	}).Methods(http.MethodDelete)

	// PUT doc owner
	r.HandleFunc("/api/docs/{id}/owner", func(w http.ResponseWriter, r *http.Request) {
		docs.Transfer(r.Context(), log, w, r, mux.Vars(r)["id"], doc)
	}).Methods(http.MethodPut)

	// GET effective permissions
	r.HandleFunc("/api/docs/{id}/permissions", func(w http.ResponseWriter, r *http.Request) {
		docs.Permissions(r.Context(), log, w, r, mux.Vars(r)["id"], doc)
	}).Methods(http.MethodGet)

	// GET access log
	r.HandleFunc("/api/docs/{id}/access-logs", func(w http.ResponseWriter, r *http.Request) {
		docs.AccessLogs(r.Context(), log, w, r, mux.Vars(r)["id"], doc)
	}).Methods(http.MethodGet)

	// shares
	r.HandleFunc("/api/docs/{id}/shares", func(w http.ResponseWriter, r *http.Request) {
		shares.List(r.Context(), log, w, r, mux.Vars(r)["id"], sharing)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/docs/{id}/shares", func(w http.ResponseWriter, r *http.Request) {
		shares.Create(r.Context(), log, w, r, mux.Vars(r)["id"], sharing)
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/docs/{id}/shares/bulk", func(w http.ResponseWriter, r *http.Request) {
		shares.Bulk(r.Context(), log, w, r, mux.Vars(r)["id"], sharing)
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/shares/{id}", func(w http.ResponseWriter, r *http.Request) {
		shares.Update(r.Context(), log, w, r, mux.Vars(r)["id"], sharing)
	}).Methods(http.MethodPatch)

	r.HandleFunc("/api/shares/{id}", func(w http.ResponseWriter, r *http.Request) {
		shares.Revoke(r.Context(), log, w, r, mux.Vars(r)["id"], sharing)
	}).Methods(http.MethodDelete)

	r.HandleFunc("/api/docs/{id}/copy-permissions", func(w http.ResponseWriter, r *http.Request) {
		shares.CopyPermissions(r.Context(), log, w, r, mux.Vars(r)["id"], sharing)
	}).Methods(http.MethodPost)

	// grants
	r.HandleFunc("/api/docs/{id}/grants", func(w http.ResponseWriter, r *http.Request) {
		grants.List(r.Context(), log, w, r, mux.Vars(r)["id"], sharing)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/docs/{id}/grants", func(w http.ResponseWriter, r *http.Request) {
		grants.Assign(r.Context(), log, w, r, mux.Vars(r)["id"], sharing)
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/docs/{id}/grants", func(w http.ResponseWriter, r *http.Request) {
		grants.Remove(r.Context(), log, w, r, mux.Vars(r)["id"], sharing)
	}).Methods(http.MethodDelete)
}
