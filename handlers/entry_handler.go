package handlers

import (
	"net/http"

	"github.com/Rouva01/competition-system/services"
)

type EntryHandler struct {
	entryService services.EntryService
}

func NewEntryHandler(entryService services.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

func (h *EntryHandler) SubmitTimeHandler(w http.ResponseWriter, r *http.Request) {
	entryID, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ExpectedVersion int    `json:"expected_version"`
		Course          string `json:"course"`
		Time            string `json:"time"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.entryService.SubmitTime(r.Context(), services.SubmitTimeRequest{
		EntryID:         entryID,
		ExpectedVersion: input.ExpectedVersion,
		Course:          input.Course,
		Time:            input.Time,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EntryHandler) ListEntriesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.entryService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
