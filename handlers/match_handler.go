package handlers

import (
	"net/http"

	"github.com/Rouva01/competition-system/models"
	"github.com/Rouva01/competition-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// SubmitResultHandler records a final score for a match. The request must
// carry the version the scorer last read; a stale version answers 409 with
// the current one.
func (h *MatchHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ExpectedVersion int                  `json:"expected_version"`
		Format          models.EventFormat   `json:"format"`
		Score1          int                  `json:"score1"`
		Score2          int                  `json:"score2"`
		Rounds          []models.RoundResult `json:"rounds"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.matchService.SubmitResult(r.Context(), services.SubmitResultRequest{
		MatchID:         matchID,
		ExpectedVersion: input.ExpectedVersion,
		Format:          input.Format,
		Score1:          input.Score1,
		Score2:          input.Score2,
		Rounds:          input.Rounds,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var stage *models.Stage
	if raw := r.URL.Query().Get("stage"); raw != "" {
		s := models.Stage(raw)
		stage = &s
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID, stage)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
