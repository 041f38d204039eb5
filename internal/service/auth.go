package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/pkg"
)

const tokenTTL = 24 * time.Hour

type AuthService interface {
	GenerateJWTToken(email string) (string, error)
	GenerateStateOauthSession(ctx echo.Context) (string, error)
	GetStateFromSession(ctx echo.Context) (string, error)
}

type authService struct {
	secretKey string
}

func NewAuthService(secretKey string) AuthService {
	return &authService{
		secretKey: secretKey,
	}
}

func (that *authService) GenerateJWTToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(that.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// GenerateStateOauthSession - stores a random OAuth state token in the
// caller's cookie session to be checked on callback.
func (that *authService) GenerateStateOauthSession(ctx echo.Context) (string, error) {
	userSession, err := session.Get("session", ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	stateToken := pkg.GenerateNewSessionID()

	userSession.Values["state"] = stateToken
	userSession.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(tokenTTL.Seconds()),
		HttpOnly: true,
	}

	if err = userSession.Save(ctx.Request(), ctx.Response()); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return stateToken, nil
}

func (that *authService) GetStateFromSession(ctx echo.Context) (string, error) {
	userSession, err := session.Get("session", ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	storedState, ok := userSession.Values["state"].(string)
	if !ok || storedState == "" {
		return "", fmt.Errorf("state not found in session")
	}

	return storedState, nil
}
