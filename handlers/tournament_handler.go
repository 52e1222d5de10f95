package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/services"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/standings"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

type advanceRequest struct {
	// Resolution orders teams inside a tie the rules could not break.
	Resolution *standings.Resolution `json:"resolution,omitempty"`
}

func (h *TournamentHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	groups, err := h.tournamentService.Standings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetQualification previews qualification. A comma-separated ?order= list of
// team IDs is applied as a resolution so operators can try one out.
func (h *TournamentHandler) GetQualification(w http.ResponseWriter, r *http.Request) {
	res, err := resolutionFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	q, err := h.tournamentService.Qualification(r.Context(), res)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"qualification": q}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func resolutionFromQuery(r *http.Request) (*standings.Resolution, error) {
	raw := r.URL.Query().Get("order")
	if raw == "" {
		return nil, nil
	}
	res := &standings.Resolution{}
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid order value %q", part)
		}
		res.TeamIDs = append(res.TeamIDs, id)
	}
	return res, nil
}

func (h *TournamentHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	matches, err := h.tournamentService.Bracket(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetStage(w http.ResponseWriter, r *http.Request) {
	st, err := h.tournamentService.Stage(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": st, "current_stage": st.CurrentStage()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	var input advanceRequest
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	t, err := h.tournamentService.Advance(r.Context(), input.Resolution)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"transition": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ResetStage(w http.ResponseWriter, r *http.Request) {
	st, err := h.tournamentService.Reset(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": st}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
