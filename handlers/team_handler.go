package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-league/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

// CreateTeam godoc
// @Summary Create a team
// @Tags teams
// @Accept json
// @Produce json
// @Param body body services.CreateTeamInput true "Team name and sponsor"
// @Success 201 {object} map[string]interface{} "Team created"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BasicAuth
// @Security BearerAuth
// @Router /teams [post]
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTeams godoc
// @Summary List teams
// @Tags teams
// @Produce json
// @Param limit query int false "Page size, 0 or absent returns all rows"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{} "Teams"
// @Security BasicAuth
// @Security BearerAuth
// @Router /teams [get]
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := readPagination(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.teamService.ListTeams(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTeamByID godoc
// @Summary Get a team
// @Tags teams
// @Produce json
// @Param teamID path string true "Team ID (uuid)"
// @Success 200 {object} map[string]interface{} "Team"
// @Failure 404 {object} map[string]string "Team not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /teams/{teamID} [get]
func (h *TeamHandler) GetTeamByID(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetTeamByID(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateTeam godoc
// @Summary Edit a team
// @Tags teams
// @Accept json
// @Produce json
// @Param teamID path string true "Team ID (uuid)"
// @Param body body services.UpdateTeamInput true "Fields to change"
// @Success 200 {object} map[string]interface{} "Updated team"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]string "Team not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /teams/{teamID} [patch]
func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.UpdateTeam(r.Context(), teamID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTeamPlayers godoc
// @Summary Team roster
// @Tags teams
// @Produce json
// @Param teamID path string true "Team ID (uuid)"
// @Success 200 {object} map[string]interface{} "Players of the team"
// @Failure 404 {object} map[string]string "Team not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /teams/{teamID}/players [get]
func (h *TeamHandler) ListTeamPlayers(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.teamService.ListTeamPlayers(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
