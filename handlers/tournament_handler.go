package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-league/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	gameService       services.GameService
}

func NewTournamentHandler(ts services.TournamentService, gs services.GameService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		gameService:       gs,
	}
}

// CreateTournament godoc
// @Summary Create a tournament
// @Description rounds defaults to 3 and boards to 10 when omitted.
// @Tags tournaments
// @Accept json
// @Produce json
// @Param body body services.CreateTournamentInput true "Tournament"
// @Success 201 {object} map[string]interface{} "Tournament created"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]string "Official not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTournaments godoc
// @Summary List tournaments
// @Tags tournaments
// @Produce json
// @Param official_id query string false "Filter by official (uuid)"
// @Param limit query int false "Page size, 0 or absent returns all rows"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{} "Tournaments"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments [get]
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	officialID, err := readOptionalUUIDQuery(r, "official_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	limit, offset, err := readPagination(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), officialID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTournamentByID godoc
// @Summary Get a tournament
// @Tags tournaments
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Success 200 {object} map[string]interface{} "Tournament with its official"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetTournamentByID(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournamentByID(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateTournament godoc
// @Summary Edit a tournament
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Param body body services.UpdateTournamentInput true "Fields to change"
// @Success 200 {object} map[string]interface{} "Updated tournament"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]string "Tournament or official not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments/{tournamentID} [patch]
func (h *TournamentHandler) UpdateTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.UpdateTournament(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Enroll godoc
// @Summary Enroll a player
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Param body body services.EnrollInput true "Player and team"
// @Success 201 {object} map[string]interface{} "Enrollment"
// @Failure 404 {object} map[string]string "Tournament, player or team not found"
// @Failure 409 {object} map[string]string "Player already enrolled"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/enroll [post]
func (h *TournamentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.EnrollInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	enrollment, err := h.tournamentService.Enroll(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"enrollment": enrollment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListEnrollments godoc
// @Summary List enrollments in enrollment order
// @Tags tournaments
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Success 200 {object} map[string]interface{} "Enrollments"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/enrollments [get]
func (h *TournamentHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	enrollments, err := h.tournamentService.ListEnrollments(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"enrollments": enrollments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTournamentGames godoc
// @Summary List games of a tournament
// @Tags tournaments
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Param round query int false "Only this round"
// @Success 200 {object} map[string]interface{} "Games ordered by round and board"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/games [get]
func (h *TournamentHandler) ListTournamentGames(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := readOptionalIntQuery(r, "round")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.gameService.ListTournamentGames(r.Context(), tournamentID, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRounds godoc
// @Summary List organized rounds
// @Tags rounds
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Success 200 {object} map[string]interface{} "Rounds"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Security BasicAuth
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/rounds [get]
func (h *TournamentHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.tournamentService.ListRounds(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
