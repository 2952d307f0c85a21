package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-league/services"
)

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gs services.GameService) *GameHandler {
	return &GameHandler{gameService: gs}
}

// CreateGame godoc
// @Summary Record a game by hand
// @Tags games
// @Accept json
// @Produce json
// @Param body body services.CreateGameInput true "Game"
// @Success 201 {object} map[string]interface{} "Game created"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]string "Tournament, player or official not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /games [post]
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var input services.CreateGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListGames godoc
// @Summary List games
// @Tags games
// @Produce json
// @Param tournament_id query string false "Filter by tournament (uuid)"
// @Param round query int false "Filter by round"
// @Param limit query int false "Page size, 0 or absent returns all rows"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{} "Games"
// @Security BasicAuth
// @Security BearerAuth
// @Router /games [get]
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	var filter services.GameFilter
	var err error

	if filter.TournamentID, err = readOptionalUUIDQuery(r, "tournament_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.Round, err = readOptionalIntQuery(r, "round"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.Limit, filter.Offset, err = readPagination(r); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.gameService.ListGames(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetGameByID godoc
// @Summary Get a game
// @Tags games
// @Produce json
// @Param gameID path string true "Game ID (uuid)"
// @Success 200 {object} map[string]interface{} "Game"
// @Failure 404 {object} map[string]string "Game not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /games/{gameID} [get]
func (h *GameHandler) GetGameByID(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.GetGameByID(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateGame godoc
// @Summary Edit an unresolved game
// @Description The result cannot be set here, use the resolve endpoint.
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID (uuid)"
// @Param body body services.UpdateGameInput true "Fields to change"
// @Success 200 {object} map[string]interface{} "Updated game"
// @Failure 404 {object} map[string]string "Game not found"
// @Failure 409 {object} map[string]string "Game already resolved"
// @Security BasicAuth
// @Security BearerAuth
// @Router /games/{gameID} [patch]
func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.UpdateGame(r.Context(), gameID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteGame godoc
// @Summary Delete an unresolved game
// @Tags games
// @Produce json
// @Param gameID path string true "Game ID (uuid)"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]string "Game not found"
// @Failure 409 {object} map[string]string "Game already resolved"
// @Security BasicAuth
// @Security BearerAuth
// @Router /games/{gameID} [delete]
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.gameService.DeleteGame(r.Context(), gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok", "id": gameID}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResolveGame godoc
// @Summary Record a game result
// @Description result is the winning player's id or "draw". Player tallies are updated in the same transaction.
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID (uuid)"
// @Param body body services.ResolveGameInput true "Result and official"
// @Success 200 {object} map[string]interface{} "Resolved game"
// @Failure 400 {object} map[string]interface{} "Invalid result"
// @Failure 404 {object} map[string]string "Game or official not found"
// @Failure 409 {object} map[string]string "Game already resolved"
// @Security BasicAuth
// @Security BearerAuth
// @Router /games/{gameID}/resolve [post]
func (h *GameHandler) ResolveGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ResolveGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.ResolveGame(r.Context(), gameID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
