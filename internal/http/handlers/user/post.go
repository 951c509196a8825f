package user

import (
	"context"
	"docshare/internal/dto"
	"docshare/internal/models"
	authservice "docshare/internal/services/auth"
	utils "docshare/internal/utils/http_errors"
	"encoding/json"
	"log/slog"
	"net/http"
)

func Add(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, ua UserAdder) {
	op := pkg + "Add"

	log = log.With(slog.String("op", op))

	defer r.Body.Close()

	var userRequest dto.UserRequest

	if err := json.NewDecoder(r.Body).Decode(&userRequest); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		utils.WriteError(w, models.ErrInvalidParams)
		return
	}

	user, err := ua.Register(ctx, authservice.Registration{
		Login:       userRequest.Login,
		Password:    userRequest.Password,
		AdminToken:  userRequest.AdminToken,
		Groups:      userRequest.Groups,
		IsSuperuser: userRequest.IsSuperuser,
	})
	if err != nil {
		log.Warn("failed to register user", slog.String("login", userRequest.Login), slog.String("error", err.Error()))
		utils.WriteError(w, err)
		return
	}

	if err := utils.WriteData(w, http.StatusCreated, user); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
