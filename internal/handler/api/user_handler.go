package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"matchhub/internal/domain/model"
	"matchhub/internal/handler/auth"
	"matchhub/internal/infrastructure/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	users repository.UserRepository
	tm    auth.TokenManager
}

func NewUserHandler(users repository.UserRepository, tm auth.TokenManager) *UserHandler {
	return &UserHandler{users: users, tm: tm}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterUser — register user via REST
func (uh *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	user := model.NewUser(creds.Username, string(hashedPassword))
	if err := uh.users.CreateUser(r.Context(), *user); err != nil {
		slog.Error("register user", "error", err)
		http.Error(w, "User already exists or database error", http.StatusConflict)
		return
	}
	slog.Info("User registered", "username", creds.Username)

	token, err := uh.tm.Generate(user.ID)
	if err != nil {
		http.Error(w, "generate token", http.StatusInternalServerError)
		return
	}

	uh.setAuthCookie(w, token)
	w.WriteHeader(http.StatusCreated)
}

// LoginUser — login user via REST
func (uh *UserHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	user, err := uh.users.UserByUsername(r.Context(), creds.Username)
	if err != nil {
		slog.Error("User not found", "username", creds.Username, "error", err)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		slog.Error("Invalid password", "username", creds.Username)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := uh.tm.Generate(user.ID)
	if err != nil {
		http.Error(w, "generate token", http.StatusInternalServerError)
		return
	}
	slog.Info("User logged in", "username", creds.Username)

	uh.setAuthCookie(w, token)
	w.WriteHeader(http.StatusOK)
}

func (uh *UserHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(
		w, &http.Cookie{
			Name:     "token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   false, // disabled for localhost
			SameSite: http.SameSiteStrictMode,
			MaxAge:   86400,
		},
	)
}
