package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/votebooth/internal/application"
	"github.com/ericfisherdev/votebooth/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SessionResponse describes where the voter currently is in the flow.
type SessionResponse struct {
	State    string `json:"state"`
	Category string `json:"category,omitempty"`
	// Position is 1-based within the ballot; 0 outside the category phase.
	Position int `json:"position,omitempty"`
	Total    int `json:"total"`
}

// VerifyPinRequest is the JSON body for the PIN entry endpoint.
type VerifyPinRequest struct {
	PIN string `json:"pin"`
}

// VerifyPinResponse reports the outcome of a PIN entry.
type VerifyPinResponse struct {
	Valid        bool   `json:"valid"`
	AlreadyVoted bool   `json:"already_voted"`
	State        string `json:"state"`
}

// CandidateResponse is the JSON representation of one candidate.
type CandidateResponse struct {
	CandidateNumber int    `json:"candidate_number"`
	Name            string `json:"name"`
	Department      string `json:"department"`
	ImageURL        string `json:"image_url,omitempty"`
}

// SelectionResponse is the JSON representation of a stored choice.
type SelectionResponse struct {
	Category  string            `json:"category"`
	Candidate CandidateResponse `json:"candidate"`
	ChosenAt  string            `json:"chosen_at"`
}

// CategoryPageResponse carries everything needed to render a selection page.
type CategoryPageResponse struct {
	Category   string              `json:"category"`
	Candidates []CandidateResponse `json:"candidates"`
	Selected   *SelectionResponse  `json:"selected,omitempty"`
	Featured   *CandidateResponse  `json:"featured,omitempty"`
	CanAdvance bool                `json:"can_advance"`
	Message    string              `json:"message,omitempty"`
}

// SelectRequest is the JSON body for recording a choice.
type SelectRequest struct {
	CandidateNumber int `json:"candidate_number"`
}

// SubmitResponse acknowledges a confirmed bulk submission.
type SubmitResponse struct {
	Message     string `json:"message"`
	SubmittedAt string `json:"submitted_at"`
	State       string `json:"state"`
}

// CandidateResultResponse is one candidate's tally line.
type CandidateResultResponse struct {
	CandidateNumber int     `json:"candidate_number"`
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	ImageURL        string  `json:"image_url,omitempty"`
	VoteCount       int64   `json:"vote_count"`
	Percentage      float64 `json:"percentage"`
}

// CategoryResultResponse is the aggregated tally for one category.
type CategoryResultResponse struct {
	Category   string                    `json:"category"`
	TotalVotes int64                     `json:"total_votes"`
	Candidates []CandidateResultResponse `json:"candidates"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toSessionResponse converts a session state to its JSON representation.
func toSessionResponse(state model.SessionState) SessionResponse {
	resp := SessionResponse{
		State: string(state.Phase),
		Total: len(state.Categories),
	}
	if cat, ok := state.Current(); ok {
		resp.Category = string(cat)
		resp.Position = state.Index + 1
	}
	return resp
}

// toCandidateResponse converts a domain candidate to its JSON representation.
func toCandidateResponse(c model.Candidate) CandidateResponse {
	return CandidateResponse{
		CandidateNumber: c.Number,
		Name:            c.Name,
		Department:      c.Department,
		ImageURL:        c.ImageURL,
	}
}

// toSelectionResponse converts a domain selection to its JSON representation.
func toSelectionResponse(sel model.Selection) SelectionResponse {
	return SelectionResponse{
		Category:  string(sel.Category),
		Candidate: toCandidateResponse(sel.Candidate),
		ChosenAt:  sel.ChosenAt.UTC().Format(time.RFC3339),
	}
}

// toCategoryPageResponse converts an application page to its JSON representation.
func toCategoryPageResponse(page application.CategoryPage) CategoryPageResponse {
	resp := CategoryPageResponse{
		Category:   string(page.Category),
		Candidates: make([]CandidateResponse, 0, len(page.Candidates)),
		CanAdvance: page.CanAdvance,
	}
	for _, c := range page.Candidates {
		resp.Candidates = append(resp.Candidates, toCandidateResponse(c))
	}
	if page.Selected != nil {
		sel := toSelectionResponse(*page.Selected)
		resp.Selected = &sel
	}
	if page.Featured != nil {
		feat := toCandidateResponse(*page.Featured)
		resp.Featured = &feat
	}
	if len(page.Candidates) == 0 {
		resp.Message = "No candidates available."
	}
	return resp
}

// toCategoryResultResponse converts a domain tally to its JSON representation.
func toCategoryResultResponse(cr model.CategoryResult) CategoryResultResponse {
	resp := CategoryResultResponse{
		Category:   string(cr.Category),
		TotalVotes: cr.TotalVotes,
		Candidates: make([]CandidateResultResponse, 0, len(cr.Candidates)),
	}
	for _, c := range cr.Candidates {
		resp.Candidates = append(resp.Candidates, CandidateResultResponse{
			CandidateNumber: c.Number,
			Name:            c.Name,
			Department:      c.Department,
			ImageURL:        c.ImageURL,
			VoteCount:       c.VoteCount,
			Percentage:      c.Percentage,
		})
	}
	return resp
}
