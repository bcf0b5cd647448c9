package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/client"
	"github.com/Cowspump/some-diploma-stuff/client/scoring"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/respond"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/store"
)

type questionsResponse struct {
	Message   string            `json:"message"`
	Questions []client.Question `json:"questions"`
}

type resultsResponse struct {
	Message string              `json:"message"`
	Results []client.TestResult `json:"results"`
}

type submitRequest struct {
	Answers map[int]int `json:"answers"`
}

type submitResponse struct {
	Message    string `json:"message"`
	TotalScore int    `json:"total_score"`
}

type questionAdded struct {
	Message    string `json:"message"`
	QuestionID int64  `json:"question_id"`
}

// Questions handles GET /test/questions.
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.store.Questions(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list questions")
		respond.WriteInternalError(w, "")
		return
	}
	respond.WriteJSON(w, http.StatusOK, questionsResponse{Message: "Questions fetched", Questions: qs})
}

// AddQuestion handles POST /test/add-question. Therapists only.
func (h *Handler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	if !requireRole(w, u, client.RoleTherapist, "Only therapists can add questions") {
		return
	}
	var req client.QuestionInput
	if err := decodeJSON(w, r, &req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" || len(req.Options) == 0 {
		respond.WriteBadRequest(w, "Question text and at least one option are required")
		return
	}
	id, err := h.store.AddQuestion(r.Context(), strings.TrimSpace(req.Text), req.Options)
	if err != nil {
		log.Error().Err(err).Msg("add question")
		respond.WriteInternalError(w, "")
		return
	}
	respond.WriteJSON(w, http.StatusOK, questionAdded{Message: "Question added", QuestionID: id})
}

// DeleteQuestion handles DELETE /test/question/{id}. Therapists only.
func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	if !requireRole(w, u, client.RoleTherapist, "Only therapists can delete questions") {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.store.DeleteQuestion(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteNotFound(w, "Question not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("question_id", id).Msg("delete question")
		respond.WriteInternalError(w, "")
		return
	}
	respond.WriteJSON(w, http.StatusOK, client.MessageResponse{Message: "Question deleted"})
}

// SubmitTest handles POST /test/submit. Workers only.
func (h *Handler) SubmitTest(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	if !requireRole(w, u, client.RoleWorker, "Only workers can submit tests") {
		return
	}
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if len(req.Answers) == 0 {
		respond.WriteBadRequest(w, "No answers submitted")
		return
	}
	qs, err := h.store.Questions(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list questions")
		respond.WriteInternalError(w, "")
		return
	}
	total, err := scoring.TotalScore(qs, req.Answers)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if _, err := h.store.AddTestResult(r.Context(), u.ID, total); err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("save test result")
		respond.WriteInternalError(w, "")
		return
	}
	h.refreshSummary(u.ID)
	respond.WriteJSON(w, http.StatusOK, submitResponse{Message: "Result saved", TotalScore: total})
}

// TestResults handles GET /test/results. Workers only.
func (h *Handler) TestResults(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	if !requireRole(w, u, client.RoleWorker, "Only workers can view test results") {
		return
	}
	res, err := h.store.TestResults(r.Context(), u.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("list test results")
		respond.WriteInternalError(w, "")
		return
	}
	respond.WriteJSON(w, http.StatusOK, resultsResponse{Message: "Results fetched", Results: res})
}
