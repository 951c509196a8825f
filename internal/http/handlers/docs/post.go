package docs

import (
	"context"
	"docshare/internal/dto"
	"docshare/internal/http/middleware"
	"docshare/internal/models"
	errutils "docshare/internal/utils/http_errors"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

const multipartMemory = 32 << 20

// Upload accepts multipart/form-data with a "file" part and an optional "meta" JSON field.
func Upload(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, maxUpload int64, du DocumentUploader) {
	op := pkg + "Upload"

	log = log.With(slog.String("op", op))

	requester := middleware.Requester(r)
	if !requester.IsAuthenticated() {
		errutils.WriteError(w, models.ErrInvalidCredentials)
		return
	}

	if maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("upload too large", slog.Int64("limit", tooLarge.Limit))
			errutils.WriteJSONError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		log.Warn("failed to parse multipart form", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	var meta dto.UploadMeta

	if metaPart := r.FormValue("meta"); metaPart != "" {
		if err := json.Unmarshal([]byte(metaPart), &meta); err != nil {
			log.Warn("failed to unmarshal meta", slog.String("error", err.Error()))
			errutils.WriteJSONError(w, http.StatusBadRequest, "invalid meta json")
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("file part is missing", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := meta.ContentType
	if ct := header.Header.Get("Content-Type"); contentType == "" && ct != "application/octet-stream" {
		contentType = ct
	}

	doc := &models.Document{
		Title:       meta.Title,
		Description: meta.Description,
		FileName:    header.Filename,
		ContentType: contentType,
		IsPublic:    meta.IsPublic,
	}

	created, err := du.UploadDocument(ctx, requester, doc, file)
	if err != nil {
		log.Warn("failed to upload document", slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusCreated, dto.Document(created)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
