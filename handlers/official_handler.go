package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-league/services"
)

type OfficialHandler struct {
	officialService services.OfficialService
}

func NewOfficialHandler(svc services.OfficialService) *OfficialHandler {
	return &OfficialHandler{officialService: svc}
}

type verifyOfficialRequest struct {
	Token string `json:"token"`
}

// CreateOfficial godoc
// @Summary Register an official
// @Description Stores the official and emails a verification token when SMTP is configured.
// @Tags officials
// @Accept json
// @Produce json
// @Param body body services.CreateOfficialInput true "Official"
// @Success 201 {object} map[string]interface{} "Official created"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 409 {object} map[string]string "Email already in use"
// @Security BasicAuth
// @Security BearerAuth
// @Router /officials [post]
func (h *OfficialHandler) CreateOfficial(w http.ResponseWriter, r *http.Request) {
	var input services.CreateOfficialInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	official, err := h.officialService.CreateOfficial(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"official": official}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListOfficials godoc
// @Summary List officials
// @Tags officials
// @Produce json
// @Param limit query int false "Page size, 0 or absent returns all rows"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{} "Officials"
// @Security BasicAuth
// @Security BearerAuth
// @Router /officials [get]
func (h *OfficialHandler) ListOfficials(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := readPagination(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	officials, err := h.officialService.ListOfficials(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"officials": officials}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetOfficialByID godoc
// @Summary Get an official
// @Tags officials
// @Produce json
// @Param officialID path string true "Official ID (uuid)"
// @Success 200 {object} map[string]interface{} "Official"
// @Failure 404 {object} map[string]string "Official not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /officials/{officialID} [get]
func (h *OfficialHandler) GetOfficialByID(w http.ResponseWriter, r *http.Request) {
	officialID, err := getIDFromURL(r, "officialID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	official, err := h.officialService.GetOfficialByID(r.Context(), officialID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"official": official}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateOfficial godoc
// @Summary Edit an official
// @Description Changing the email resets verification.
// @Tags officials
// @Accept json
// @Produce json
// @Param officialID path string true "Official ID (uuid)"
// @Param body body services.UpdateOfficialInput true "Fields to change"
// @Success 200 {object} map[string]interface{} "Updated official"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]string "Official not found"
// @Failure 409 {object} map[string]string "Email already in use"
// @Security BasicAuth
// @Security BearerAuth
// @Router /officials/{officialID} [patch]
func (h *OfficialHandler) UpdateOfficial(w http.ResponseWriter, r *http.Request) {
	officialID, err := getIDFromURL(r, "officialID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateOfficialInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	official, err := h.officialService.UpdateOfficial(r.Context(), officialID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"official": official}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// VerifyOfficial godoc
// @Summary Confirm an official's email
// @Tags officials
// @Accept json
// @Produce json
// @Param body body verifyOfficialRequest true "Verification token"
// @Success 200 {object} map[string]interface{} "Verified official"
// @Failure 400 {object} map[string]interface{} "Invalid token"
// @Failure 409 {object} map[string]string "Already verified"
// @Router /officials/verify [post]
// @Router /officials/verify [get]
func (h *OfficialHandler) VerifyOfficial(w http.ResponseWriter, r *http.Request) {
	var input verifyOfficialRequest
	// Ссылка из письма открывается GET-запросом с токеном в query.
	if r.Method == http.MethodGet {
		input.Token = r.URL.Query().Get("token")
	} else if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	official, err := h.officialService.VerifyOfficial(r.Context(), input.Token)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"official": official}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
