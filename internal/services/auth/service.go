package authservice

import (
	"context"
	"docshare/internal/clock"
	"docshare/internal/models"
	"docshare/internal/validator"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

const pkg = "authService/"

type AuthService struct {
	log           *slog.Logger
	userAdder     UserAdder
	userProvider  UserProvider
	sessionStorer SessionStorer
	ids           clock.IDGenerator
	adminToken    string
}

func New(
	log *slog.Logger,
	userAdder UserAdder,
	userProvider UserProvider,
	sessionStorer SessionStorer,
	ids clock.IDGenerator,
	adminToken string,
) *AuthService {
	return &AuthService{
		log:           log,
		userAdder:     userAdder,
		userProvider:  userProvider,
		sessionStorer: sessionStorer,
		ids:           ids,
		adminToken:    adminToken,
	}
}

// Registration describes a new account. Only holders of the admin token may register users.
type Registration struct {
	Login       string
	Password    string
	AdminToken  string
	Groups      []string
	IsSuperuser bool
}

func (a *AuthService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	op := pkg + "Register"

	log := a.log.With(slog.String("op", op))

	log.Debug("attempting to register user")

	if a.adminToken == "" || reg.AdminToken != a.adminToken {
		log.Warn("invalid admin token")
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	if !validator.IsValidLogin(reg.Login) || !validator.IsValidPassword(reg.Password) {
		log.Warn("invalid login or password format")
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidParams)
	}

	for _, group := range reg.Groups {
		if !validator.IsValidGroup(group) {
			log.Warn("invalid group name", slog.String("group", group))
			return nil, fmt.Errorf("%s: invalid group %q: %w", op, group, models.ErrInvalidParams)
		}
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	user := models.User{
		ID:          a.ids.New(),
		Login:       reg.Login,
		PassHash:    passHash,
		IsSuperuser: reg.IsSuperuser,
		Groups:      reg.Groups,
	}

	err = a.userAdder.AddUser(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrUserExists) {
			log.Warn("user already exists", slog.String("login", user.Login))
			return nil, fmt.Errorf("%s: %w", op, models.ErrUserExists)
		}

		log.Error("failed to add user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Info("user registered", slog.String("user_id", user.ID), slog.Bool("superuser", user.IsSuperuser))

	return &user, nil
}

func (a *AuthService) Login(ctx context.Context, login string, password string) (string, error) {
	op := pkg + "Login"

	log := a.log.With(
		slog.String("op", op),
	)

	log.Debug("attempting to login user")

	user, err := a.userProvider.UserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Info("unknown login", slog.String("login", login))
			return "", fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}

		log.Error("failed to get user", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	groups, err := a.userProvider.GroupsOf(ctx, user.ID)
	if err != nil {
		log.Warn("failed to load groups for session", slog.String("error", err.Error()))
	}
	user.Groups = groups

	token := a.ids.New()

	err = a.sessionStorer.SaveSession(ctx, token, user)
	if err != nil {
		log.Error("failed to store token", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Debug("user logged in successfully")

	return token, nil
}

// UserByToken resolves a session token. Unknown or expired tokens are
// reported as invalid credentials.
func (a *AuthService) UserByToken(ctx context.Context, token string) (*models.User, error) {
	op := pkg + "UserByToken"

	log := a.log.With(slog.String("op", op))

	user, err := a.sessionStorer.UserByToken(ctx, token)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, models.ErrSessionNotFound):
		log.Debug("session not found")
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	default:
		log.Error("failed to get session", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}
}

func (a *AuthService) Logout(ctx context.Context, token string) error {
	op := pkg + "Logout"

	log := a.log.With(slog.String("op", op))

	log.Debug("attempting to logout user")

	err := a.sessionStorer.DeleteSession(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			log.Warn("session not found")

			return models.ErrSessionNotFound
		}
		log.Error("failed to delete session", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Debug("user logged out successfully")

	return nil
}
