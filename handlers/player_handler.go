package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-league/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// CreatePlayer godoc
// @Summary Create a player
// @Tags players
// @Accept json
// @Produce json
// @Param body body services.CreatePlayerInput true "Player"
// @Success 201 {object} map[string]interface{} "Player created"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]string "Team not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /players [post]
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.CreatePlayer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPlayers godoc
// @Summary List players
// @Tags players
// @Produce json
// @Param team_id query string false "Filter by team (uuid)"
// @Param limit query int false "Page size, 0 or absent returns all rows"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{} "Players"
// @Security BasicAuth
// @Security BearerAuth
// @Router /players [get]
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	teamID, err := readOptionalUUIDQuery(r, "team_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	limit, offset, err := readPagination(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.playerService.ListPlayers(r.Context(), teamID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPlayerByID godoc
// @Summary Get a player
// @Tags players
// @Produce json
// @Param playerID path string true "Player ID (uuid)"
// @Success 200 {object} map[string]interface{} "Player"
// @Failure 404 {object} map[string]string "Player not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /players/{playerID} [get]
func (h *PlayerHandler) GetPlayerByID(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetPlayerByID(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdatePlayer godoc
// @Summary Edit a player
// @Description Only name and grade can be changed; tallies follow game results.
// @Tags players
// @Accept json
// @Produce json
// @Param playerID path string true "Player ID (uuid)"
// @Param body body services.UpdatePlayerInput true "Fields to change"
// @Success 200 {object} map[string]interface{} "Updated player"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]string "Player not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /players/{playerID} [patch]
func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.UpdatePlayer(r.Context(), playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeletePlayer godoc
// @Summary Delete a player
// @Tags players
// @Produce json
// @Param playerID path string true "Player ID (uuid)"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]string "Player not found"
// @Failure 409 {object} map[string]string "Player has games or enrollments"
// @Security BasicAuth
// @Security BearerAuth
// @Router /players/{playerID} [delete]
func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.DeletePlayer(r.Context(), playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok", "id": playerID}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
