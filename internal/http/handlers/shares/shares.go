package shares

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

func List(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, sm ShareManager) {
	op := pkg + "List"

	log = log.With(slog.String("op", op))

	shares, err := sm.ListShares(ctx, middleware.Requester(r), docID)
	if err != nil {
		log.Warn("failed to list shares", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, map[string]any{"shares": shares}); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Create(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, sm ShareManager) {
	op := pkg + "Create"

	log = log.With(slog.String("op", op))

	var req dto.ShareRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		errutils.WriteError(w, models.ErrInvalidParams)
		return
	}

	share, err := sm.CreateShare(ctx, middleware.Requester(r), docID, req.UserID, req.Level, req.ExpiresAt)
	if err != nil {
		log.Warn("failed to share document", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusCreated, share); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Bulk(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, sm ShareManager) {
	op := pkg + "Bulk"

	log = log.With(slog.String("op", op))

	var req dto.BulkShareRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		errutils.WriteError(w, models.ErrInvalidParams)
		return
	}

	res, err := sm.BulkCreateShares(ctx, middleware.Requester(r), docID, req.UserIDs, req.Level, req.ExpiresAt)
	if err != nil {
		log.Warn("failed to bulk share document", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusCreated, res); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Update(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, shareID string, sm ShareManager) {
	op := pkg + "Update"

	log = log.With(slog.String("op", op))

	var req dto.ShareUpdateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		errutils.WriteError(w, models.ErrInvalidParams)
		return
	}

	upd, err := req.Update()
	if err != nil {
		errutils.WriteError(w, err)
		return
	}

	share, err := sm.UpdateShare(ctx, middleware.Requester(r), shareID, upd)
	if err != nil {
		log.Warn("failed to update share", slog.String("share_id", shareID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, share); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Revoke(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, shareID string, sm ShareManager) {
	op := pkg + "Revoke"

	log = log.With(slog.String("op", op))

	if err := sm.RevokeShare(ctx, middleware.Requester(r), shareID); err != nil {
		log.Warn("failed to revoke share", slog.String("share_id", shareID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func CopyPermissions(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, sm ShareManager) {
	op := pkg + "CopyPermissions"

	log = log.With(slog.String("op", op))

	var req dto.CopyPermissionsRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetID == "" {
		log.Warn("invalid copy request")
		errutils.WriteError(w, models.ErrInvalidParams)
		return
	}

	res, err := sm.CopyPermissions(ctx, middleware.Requester(r), docID, req.TargetID, req.IncludeShares)
	if err != nil {
		log.Warn("failed to copy permissions", slog.String("source_id", docID), slog.String("target_id", req.TargetID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, res); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
