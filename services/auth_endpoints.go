package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/talentgrid/backend/models"
)

type AuthEndpoints struct {
	authService *AuthService
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdateRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

type SetupPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func NewAuthEndpoints(authService *AuthService) *AuthEndpoints {
	return &AuthEndpoints{
		authService: authService,
	}
}

// RegisterPublicRoutes mounts the routes reachable without a session.
func (e *AuthEndpoints) RegisterPublicRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", e.LoginHandler)
		r.Post("/refresh", e.RefreshHandler)
	})
}

// RegisterProtectedRoutes mounts the routes behind the auth middleware.
func (e *AuthEndpoints) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", e.LogoutHandler)
	r.Get("/auth/me", e.MeHandler)
	r.Patch("/profile", e.ProfileHandler)
	r.Patch("/setup-password", e.SetupPasswordHandler)
}

func (e *AuthEndpoints) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	authResponse, err := e.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Error("Login failed", "error", err, "email", req.Email)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	e.authService.SetAuthCookies(w, authResponse.AccessToken, authResponse.RefreshToken)

	writeData(w, http.StatusOK, map[string]interface{}{
		"user": userView(authResponse.User),
	})

	slog.Info("User logged in", "user_id", authResponse.User.ID, "email", authResponse.User.Email)
}

func (e *AuthEndpoints) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	refreshToken := e.authService.GetTokenFromCookie(r, "refresh_token")
	if refreshToken == "" {
		writeError(w, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	authResponse, err := e.authService.RefreshToken(r.Context(), refreshToken)
	if err != nil {
		slog.Error("Token refresh failed", "error", err)
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	e.authService.SetAuthCookies(w, authResponse.AccessToken, "")
	writeMessage(w, http.StatusOK, "Token refreshed successfully")

	slog.Info("Token refreshed", "user_id", authResponse.User.ID)
}

func (e *AuthEndpoints) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := e.authService.Logout(r.Context(), user.ID); err != nil {
		slog.Error("Logout failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	e.authService.ClearAuthCookies(w)
	writeMessage(w, http.StatusOK, "Logout successful")

	slog.Info("User logged out", "user_id", user.ID)
}

func (e *AuthEndpoints) MeHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"user": userView(user),
	})
}

// ProfileHandler applies a partial update to the caller's own profile.
func (e *AuthEndpoints) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.FullName != nil {
		if *req.FullName == "" {
			writeError(w, http.StatusBadRequest, "Full name cannot be empty")
			return
		}
		user.FullName = *req.FullName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := e.authService.repo.UpdateUser(r.Context(), user); err != nil {
		slog.Error("Profile update failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"user": userView(user),
	})

	slog.Info("Profile updated", "user_id", user.ID)
}

func (e *AuthEndpoints) SetupPasswordHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req SetupPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CurrentPassword != "" {
		if _, err := e.authService.Login(r.Context(), user.Email, req.CurrentPassword); err != nil {
			writeError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
	}

	if err := e.authService.SetPassword(r.Context(), user, req.NewPassword); err != nil {
		slog.Error("Password setup failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeMessage(w, http.StatusOK, "Password updated successfully")
}

// userView strips sensitive fields from a staff user for responses.
func userView(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":         user.ID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"phone":      user.Phone,
		"avatar_url": user.AvatarURL,
		"role":       user.Role,
	}
}
