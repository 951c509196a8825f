package docs

import (
	"context"
	"docshare/internal/http/middleware"
	errutils "docshare/internal/utils/http_errors"
	parseutil "docshare/internal/utils/parseLimit"
	"log/slog"
	"net/http"
)

func Permissions(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, ai AccessInspector) {
	op := pkg + "Permissions"

	log = log.With(slog.String("op", op))

	summary, err := ai.Permissions(ctx, middleware.Requester(r), docID)
	if err != nil {
		log.Warn("failed to get permissions", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, summary); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func AccessLogs(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, ai AccessInspector) {
	op := pkg + "AccessLogs"

	log = log.With(slog.String("op", op))

	limit := parseutil.ParseLimit(r.URL.Query().Get("limit"))

	events, err := ai.AccessLogs(ctx, middleware.Requester(r), docID, limit)
	if err != nil {
		log.Warn("failed to get access logs", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, map[string]any{"logs": events}); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
