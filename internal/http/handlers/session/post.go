package session

import (
	"context"
	"docshare/internal/dto"
	"docshare/internal/models"
	utils "docshare/internal/utils/http_errors"
	"encoding/json"
	"log/slog"
	"net/http"
)

func Add(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, so SessionOpener) {
	op := pkg + "Add"

	log = log.With(slog.String("op", op))

	defer r.Body.Close()

	var req dto.SessionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		utils.WriteError(w, models.ErrInvalidParams)
		return
	}

	token, err := so.Login(ctx, req.Login, req.Password)
	if err != nil {
		log.Warn("failed to open session", slog.String("login", req.Login), slog.String("error", err.Error()))
		utils.WriteError(w, err)
		return
	}

	if err := utils.WriteData(w, http.StatusOK, map[string]string{"token": token}); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
