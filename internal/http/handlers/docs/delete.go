package docs

import (
	"context"
	"docshare/internal/http/middleware"
	errutils "docshare/internal/utils/http_errors"
	"log/slog"
	"net/http"
)

func Delete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, dd DocumentDeleter) {
	op := pkg + "Delete"

	log = log.With(slog.String("op", op))

	if err := dd.DeleteDocument(ctx, middleware.Requester(r), docID); err != nil {
		log.Warn("failed to delete document", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, map[string]any{docID: true}); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Purge(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, dd DocumentDeleter) {
	op := pkg + "Purge"

	log = log.With(slog.String("op", op))

	if err := dd.PurgeDocument(ctx, middleware.Requester(r), docID); err != nil {
		log.Warn("failed to purge document", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
