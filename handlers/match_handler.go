package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/repositories"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func matchFilterFromQuery(r *http.Request) (repositories.MatchFilter, error) {
	var filter repositories.MatchFilter
	q := r.URL.Query()
	if v := q.Get("group_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return filter, fmt.Errorf("invalid group_id %q", v)
		}
		filter.GroupID = &id
	}
	if v := q.Get("round"); v != "" {
		round := models.KnockoutRound(v)
		if models.PhaseForRound(round) == "" {
			return filter, fmt.Errorf("invalid round %q", v)
		}
		filter.Round = &round
	}
	if v := q.Get("status"); v != "" {
		status := models.MatchStatus(v)
		switch status {
		case models.MatchStatusScheduled, models.MatchStatusInProgress, models.MatchStatusCompleted, models.MatchStatusCanceled:
		default:
			return filter, fmt.Errorf("invalid status %q", v)
		}
		filter.Status = &status
	}
	filter.KnockoutOnly = q.Get("knockout") == "true"
	return filter, nil
}

func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	filter, err := matchFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matches, err := h.matchService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	m, err := h.matchService.Get(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": m}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	m, err := h.matchService.SubmitResult(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": m}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
