package session

import (
	"context"
	"docshare/internal/models"
	utils "docshare/internal/utils/http_errors"
	"errors"
	"log/slog"
	"net/http"
)

// Delete ends a session. Unknown tokens are treated as already logged out.
func Delete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, token string, sd SessionDeleter) {
	op := pkg + "Delete"

	log = log.With(slog.String("op", op))

	err := sd.Logout(ctx, token)
	if err != nil && !errors.Is(err, models.ErrSessionNotFound) {
		log.Error("failed to delete session", slog.String("error", err.Error()))
		utils.WriteError(w, err)
		return
	}

	if err := utils.WriteData(w, http.StatusOK, map[string]bool{token: true}); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
