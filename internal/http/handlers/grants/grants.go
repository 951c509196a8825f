package grants

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

func List(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, gm GrantManager) {
	op := pkg + "List"

	log = log.With(slog.String("op", op))

	grants, err := gm.ListGrants(ctx, middleware.Requester(r), docID)
	if err != nil {
		log.Warn("failed to list grants", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, map[string]any{"grants": grants}); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// Assign grants explicit permissions, or a named template's permissions when template is set.
func Assign(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, gm GrantManager) {
	op := pkg + "Assign"

	log = log.With(slog.String("op", op))

	req, ok := decode(log, w, r)
	if !ok {
		return
	}

	var (
		created int
		err     error
	)
	if req.Template != "" {
		created, err = gm.ApplyTemplate(ctx, middleware.Requester(r), docID, req.UserIDs, req.Template)
	} else {
		created, err = gm.AssignGrants(ctx, middleware.Requester(r), docID, req.UserIDs, req.Permissions)
	}
	if err != nil {
		log.Warn("failed to assign grants", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, map[string]any{"created": created}); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Remove(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, gm GrantManager) {
	op := pkg + "Remove"

	log = log.With(slog.String("op", op))

	req, ok := decode(log, w, r)
	if !ok {
		return
	}

	perms := req.Permissions
	if req.Template != "" {
		var known bool
		if perms, known = models.Template(req.Template); !known {
			errutils.WriteError(w, models.ErrUnknownTemplate)
			return
		}
	}

	removed, err := gm.RemoveGrants(ctx, middleware.Requester(r), docID, req.UserIDs, perms)
	if err != nil {
		log.Warn("failed to remove grants", slog.String("doc_id", docID), slog.String("error", err.Error()))
		errutils.WriteError(w, err)
		return
	}

	if err := errutils.WriteData(w, http.StatusOK, map[string]any{"removed": removed}); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func decode(log *slog.Logger, w http.ResponseWriter, r *http.Request) (dto.GrantRequest, bool) {
	var req dto.GrantRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		errutils.WriteError(w, models.ErrInvalidParams)
		return req, false
	}

	return req, true
}
