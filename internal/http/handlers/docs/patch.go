package docs

import (
	"context"
	"docshare/internal/dto"
	"docshare/internal/http/middleware"
	"docshare/internal/models"
	errutils "docshare/internal/utils/http_errors"
	"encoding/json"
	"log/slog"
	"net/http"
)

func Update(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, de DocumentEditor) {
	op := pkg + "Update"

	log = log.With(slog.String("op", op))

	var req dto.DocumentUpdateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		errutils.WriteError(w, models.ErrInvalidParams)
		return
	}

	doc, err := de.UpdateDocument(ctx, middleware.Requester(r), docID, req.Update())
	if err != nil {
		log.Warn("failed to update document", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, dto.Document(doc)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Restore(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, de DocumentEditor) {
	op := pkg + "Restore"

	log = log.With(slog.String("op", op))

	doc, err := de.RestoreDocument(ctx, middleware.Requester(r), docID)
	if err != nil {
		log.Warn("failed to restore document", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, dto.Document(doc)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Transfer(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, de DocumentEditor) {
	op := pkg + "Transfer"

	log = log.With(slog.String("op", op))

	var req dto.TransferRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OwnerID == "" {
		log.Warn("invalid transfer request")
		errutils.WriteError(w, models.ErrInvalidParams)
		return
	}

	doc, err := de.TransferOwnership(ctx, middleware.Requester(r), docID, req.OwnerID)
	if err != nil {
		log.Warn("failed to transfer ownership", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, dto.Document(doc)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
