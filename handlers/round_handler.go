package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-league/brackets"
	"github.com/Dosada05/chess-league/services"
)

type RoundHandler struct {
	roundService services.RoundService
}

func NewRoundHandler(rs services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: rs}
}

// Standings godoc
// @Summary Ranked standings of enrolled players
// @Description seeding ranks by wins + 0.5*draws; leaderboard by net score.
// @Tags rounds
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Param mode query string false "seeding (default) or leaderboard"
// @Success 200 {object} map[string]interface{} "Standings"
// @Failure 400 {object} map[string]interface{} "Unknown mode"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/standings [get]
func (h *RoundHandler) Standings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	mode := brackets.RankingMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = brackets.RankingSeeding
	}

	standings, err := h.roundService.Standings(r.Context(), tournamentID, mode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"mode": mode, "standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PlayerStanding godoc
// @Summary One player's standing in a tournament
// @Tags rounds
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Param playerID path string true "Player ID (uuid)"
// @Success 200 {object} map[string]interface{} "Standing"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/players/{playerID}/standing [get]
func (h *RoundHandler) PlayerStanding(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standing, err := h.roundService.ComputeStandings(r.Context(), playerID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standing": standing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PreviewRound godoc
// @Summary Preview pairings for a round
// @Description Runs seeding and pairing without writing anything.
// @Tags rounds
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Param round path int true "Round number (1-based)"
// @Success 200 {object} map[string]interface{} "Preview"
// @Failure 400 {object} map[string]interface{} "Round out of range"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/rounds/{round}/preview [get]
func (h *RoundHandler) PreviewRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := getRoundFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	preview, err := h.roundService.PreviewRound(r.Context(), tournamentID, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"preview": preview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OrganizeRound godoc
// @Summary Organize a round
// @Description Creates one game per pairing and credits a win for the bye, all in one transaction.
// @Tags rounds
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Param round path int true "Round number (1-based)"
// @Success 201 {object} map[string]interface{} "Created games, byes and unpaired players"
// @Failure 400 {object} map[string]interface{} "Round out of range"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Failure 409 {object} map[string]string "Round already organized"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/rounds/{round} [post]
func (h *RoundHandler) OrganizeRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := getRoundFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.roundService.OrganizeRound(r.Context(), tournamentID, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
