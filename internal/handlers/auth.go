package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/services"
)

// AuthHandler serves the admin account routes. Credential mismatches are
// answered with 200 and success:false; the admin frontend relies on it.
type AuthHandler struct {
	auth   *services.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Username string `json:"username"`
}

type forgotPasswordResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	DeliveryMethod string `json:"deliveryMethod,omitempty"`
	ResetToken     string `json:"resetToken,omitempty"`
	Note           string `json:"note,omitempty"`
}

type resetPasswordRequest struct {
	Username    string `json:"username"`
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

type updateCredentialsRequest struct {
	CurrentUsername string `json:"currentUsername"`
	CurrentPassword string `json:"currentPassword"`
	NewUsername     string `json:"newUsername"`
	NewPassword     string `json:"newPassword"`
}

type updateEmailRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// fail answers soft auth failures with 200 and everything else through writeError.
func (h *AuthHandler) fail(w http.ResponseWriter, err error) {
	if services.IsSoftAuthError(err) {
		writeFail(w, http.StatusOK, err.Error())
		return
	}
	writeError(w, h.logger, err, "Server error")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Info("admin logged in", zap.String("user", res.User.Username))
	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		Data:    res.User,
		Token:   res.Token,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		writeError(w, h.logger, err, "Server error")
		return
	}
	writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

type registeredUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}

	user, err := h.auth.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Admin user created successfully", registeredUser{
		ID:       user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		Mobile:   user.Mobile,
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}

	res, err := h.auth.ForgotPassword(r.Context(), req.Username)
	if err != nil {
		h.fail(w, err)
		return
	}

	if res.Delivered {
		writeJSON(w, http.StatusOK, forgotPasswordResponse{
			Success:        true,
			Message:        "Reset OTP sent to your registered email address (" + res.MaskedEmail + ")",
			DeliveryMethod: "email",
		})
		return
	}
	writeJSON(w, http.StatusOK, forgotPasswordResponse{
		Success:    true,
		Message:    "Email service unavailable. Reset OTP generated",
		ResetToken: res.Token,
		Note:       "This OTP is valid for 15 minutes. Configure SMTP to deliver it by email instead.",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Username, req.ResetToken, req.NewPassword); err != nil {
		h.fail(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Password reset successfully", nil)
}

func (h *AuthHandler) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	var req updateCredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}

	err := h.auth.UpdateCredentials(r.Context(), services.CredentialsUpdate{
		CurrentLogin:    req.CurrentUsername,
		CurrentPassword: req.CurrentPassword,
		NewUsername:     req.NewUsername,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Credentials updated successfully", nil)
}

func (h *AuthHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req updateEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}

	if err := h.auth.UpdateEmail(r.Context(), req.Username, req.Password, req.Email); err != nil {
		h.fail(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Email updated successfully", nil)
}

func (h *AuthHandler) UserProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Profile(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", user)
}
