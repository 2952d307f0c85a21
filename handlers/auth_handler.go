package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-league/services"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// IssueToken godoc
// @Summary Exchange credentials for a bearer token
// @Description Credentials come from HTTP Basic auth or a JSON body.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body tokenRequest false "Credentials"
// @Success 200 {object} services.TokenResponse
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 429 {object} map[string]string "Too many attempts"
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var input tokenRequest
	if username, password, ok := r.BasicAuth(); ok {
		input.Username, input.Password = username, password
	} else if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	token, err := h.authService.IssueToken(r.Context(), input.Username, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, token, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
