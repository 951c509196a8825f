package docs

import (
	"context"
	"docshare/internal/dto"
	"docshare/internal/http/middleware"
	"docshare/internal/models"
	errutils "docshare/internal/utils/http_errors"
	parseutil "docshare/internal/utils/parseLimit"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
)

func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, dp DocumentProvider) {
	op := pkg + "Get"

	log = log.With(slog.String("op", op))

	filter := filterFrom(r)

	rawDocs, err := dp.ListDocuments(ctx, middleware.Requester(r), filter)
	if err != nil {
		log.Warn("failed to list documents", slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	response := map[string]any{
		"docs": dto.Documents(rawDocs),
	}

	if err := errutils.WriteData(w, http.StatusOK, response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func GetByID(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, dp DocumentProvider) {
	op := pkg + "GetByID"

	log = log.With(slog.String("op", op))

	doc, err := dp.DocumentByID(ctx, middleware.Requester(r), docID)
	if err != nil {
		log.Warn("failed to get document by id", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, dto.Document(doc)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Mine(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, dp DocumentProvider) {
	op := pkg + "Mine"

	log = log.With(slog.String("op", op))

	res, err := dp.MyDocuments(ctx, middleware.Requester(r))
	if err != nil {
		log.Warn("failed to list own documents", slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, dto.MyDocuments(res)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Public(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, dp DocumentProvider) {
	op := pkg + "Public"

	log = log.With(slog.String("op", op))

	page := parseutil.ParsePage(r.URL.Query().Get("page"))

	rawDocs, err := dp.PublicDocuments(ctx, page)
	if err != nil {
		log.Warn("failed to list public documents", slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	response := map[string]any{
		"page": page,
		"docs": dto.Documents(rawDocs),
	}

	if err := errutils.WriteData(w, http.StatusOK, response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// Download streams the stored content as an attachment.
func Download(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, dd DocumentDownloader) {
	op := pkg + "Download"

	log = log.With(slog.String("op", op))

	doc, file, err := dd.Download(ctx, middleware.Requester(r), docID)
	if err != nil {
		log.Warn("failed to download document", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}
	defer file.Close()

	setContentHeaders(w, doc)

	if _, err := io.Copy(w, file); err != nil {
		log.Error("failed to write file response", slog.String("error", err.Error()))
	}
}

func setContentHeaders(w http.ResponseWriter, doc *models.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	w.Header().Set("ETag", strconv.Quote(doc.Hash))
}

func filterFrom(r *http.Request) models.DocumentFilter {
	q := r.URL.Query()

	return models.DocumentFilter{
		Key:    q.Get("key"),
		Value:  q.Get("value"),
		Limit:  parseutil.ParseLimit(q.Get("limit")),
		Offset: parseutil.ParseOffset(q.Get("offset")),
	}
}
