package docs

import (
	"context"
	"docshare/internal/http/middleware"
	errutils "docshare/internal/utils/http_errors"
	"fmt"
	"log/slog"
	"net/http"
)

func Head(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, dp DocumentProvider) {
	op := pkg + "Head"

	log = log.With(slog.String("op", op))

	rawDocs, err := dp.ListDocuments(ctx, middleware.Requester(r), filterFrom(r))
	if err != nil {
		log.Warn("failed to list documents", slog.String("error", err.Error()))
		errutils.WriteStatusError(w, errutils.StatusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Documents-Count", fmt.Sprint(len(rawDocs)))
	w.WriteHeader(http.StatusOK)
}

func HeadByID(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, dp DocumentProvider) {
	op := pkg + "HeadByID"

	log = log.With(slog.String("op", op))

	doc, err := dp.HeadDocument(ctx, middleware.Requester(r), docID)
	if err != nil {
		log.Warn("failed to get document by id", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteStatusError(w, errutils.StatusFor(err))
		return
	}

	setContentHeaders(w, doc)
	w.Header().Set("Last-Modified", doc.ModifiedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
}
