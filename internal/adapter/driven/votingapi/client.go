// Package votingapi implements the VotingAPI port against the election
// backend's REST surface.
package votingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
	"github.com/ericfisherdev/votebooth/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VotingAPI = (*Client)(nil)

// Client implements the driven.VotingAPI port over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a backend client rooted at baseURL. Candidate and result
// GETs ride an httpcache memory-cache transport so repeated page loads within
// a session reuse fresh responses instead of hammering the backend.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: httpcache.NewMemoryCacheTransport(),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type verifyPinRequest struct {
	PIN string `json:"pin"`
}

type verifyPinResponse struct {
	Valid        bool `json:"valid"`
	AlreadyVoted bool `json:"alreadyVoted"`
}

type candidateJSON struct {
	CandidateNumber int     `json:"candidateNumber"`
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	ImageURL        *string `json:"imageUrl"`
}

type voteJSON struct {
	Category        string `json:"category"`
	CandidateNumber int    `json:"candidateNumber"`
}

type bulkVoteRequest struct {
	PIN      string     `json:"pin"`
	DeviceID string     `json:"deviceId"`
	Votes    []voteJSON `json:"votes"`
}

type voteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type candidateResultJSON struct {
	CandidateNumber int     `json:"candidateNumber"`
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	ImageURL        *string `json:"imageUrl"`
	VoteCount       int64   `json:"voteCount"`
	Percentage      float64 `json:"percentage"`
}

type categoryResultJSON struct {
	Category   string                `json:"category"`
	TotalVotes int64                 `json:"totalVotes"`
	Candidates []candidateResultJSON `json:"candidates"`
}

// VerifyPIN checks a PIN with the backend. A 404 means the PIN does not exist
// and maps to {false, false}; any other non-2xx status is a server failure
// carrying the response body as its message.
func (c *Client) VerifyPIN(ctx context.Context, pin string) (model.VerifyResult, error) {
	body, err := json.Marshal(verifyPinRequest{PIN: pin})
	if err != nil {
		return model.VerifyResult{}, fmt.Errorf("encode verify-pin request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/verify-pin", bytes.NewReader(body))
	if err != nil {
		return model.VerifyResult{}, fmt.Errorf("build verify-pin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.VerifyResult{}, fmt.Errorf("verify pin: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.VerifyResult{Valid: false, AlreadyVoted: false}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.VerifyResult{}, fmt.Errorf("verify pin: status %d: %s", resp.StatusCode, readBodyText(resp.Body))
	}

	var out verifyPinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.VerifyResult{}, fmt.Errorf("decode verify-pin response: %w", err)
	}
	return model.VerifyResult{Valid: out.Valid, AlreadyVoted: out.AlreadyVoted}, nil
}

// FetchCandidates returns the roster for one category. The category token is
// upper-cased in the path; the backend matches it case-insensitively but the
// canonical form keeps cache keys stable.
func (c *Client) FetchCandidates(ctx context.Context, cat model.Category) ([]model.Candidate, error) {
	url := fmt.Sprintf("%s/candidates/%s", c.baseURL, model.NormalizeCategory(string(cat)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build candidates request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for %s: %w", cat, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch candidates for %s: status %d: %s", cat, resp.StatusCode, readBodyText(resp.Body))
	}

	var raw []candidateJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode candidates for %s: %w", cat, err)
	}

	roster := make([]model.Candidate, 0, len(raw))
	for _, cj := range raw {
		roster = append(roster, mapCandidate(cj))
	}
	return roster, nil
}

// SubmitBallot submits all votes in one request. Non-2xx responses become
// *driven.RejectedError with the server's message, which the backend sends
// either as JSON {"message": ...} or as plain text.
func (c *Client) SubmitBallot(ctx context.Context, ballot model.Ballot) (*model.Receipt, error) {
	votes := make([]voteJSON, 0, len(ballot.Votes))
	for _, v := range ballot.Votes {
		votes = append(votes, voteJSON{Category: string(v.Category), CandidateNumber: v.CandidateNumber})
	}

	body, err := json.Marshal(bulkVoteRequest{PIN: ballot.PIN, DeviceID: ballot.DeviceID, Votes: votes})
	if err != nil {
		return nil, fmt.Errorf("encode bulk-vote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/voting/bulk-vote", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build bulk-vote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit ballot: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read bulk-vote response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &driven.RejectedError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(resp.Header.Get("Content-Type"), raw),
		}
	}

	var ack voteResponse
	if err := json.Unmarshal(raw, &ack); err != nil {
		// A 2xx with an unparseable body is still a confirmed submission.
		ack.Message = strings.TrimSpace(string(raw))
	}
	if ack.Message == "" {
		ack.Message = "All votes submitted successfully"
	}

	return &model.Receipt{Message: ack.Message, SubmittedAt: time.Now().UTC()}, nil
}

// FetchResults returns the aggregated tallies for all categories.
func (c *Client) FetchResults(ctx context.Context) ([]model.CategoryResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/results/all", nil)
	if err != nil {
		return nil, fmt.Errorf("build results request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch results: status %d: %s", resp.StatusCode, readBodyText(resp.Body))
	}

	var raw []categoryResultJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}

	results := make([]model.CategoryResult, 0, len(raw))
	for _, rj := range raw {
		cr := model.CategoryResult{
			Category:   model.NormalizeCategory(rj.Category),
			TotalVotes: rj.TotalVotes,
			Candidates: make([]model.CandidateResult, 0, len(rj.Candidates)),
		}
		for _, cj := range rj.Candidates {
			cr.Candidates = append(cr.Candidates, model.CandidateResult{
				Number:     cj.CandidateNumber,
				Name:       cj.Name,
				Department: cj.Department,
				ImageURL:   derefString(cj.ImageURL),
				VoteCount:  cj.VoteCount,
				Percentage: cj.Percentage,
			})
		}
		results = append(results, cr)
	}
	return results, nil
}

// mapCandidate converts a wire candidate to the domain snapshot.
func mapCandidate(cj candidateJSON) model.Candidate {
	return model.Candidate{
		Number:     cj.CandidateNumber,
		Name:       cj.Name,
		Department: cj.Department,
		ImageURL:   derefString(cj.ImageURL),
	}
}

// extractMessage reduces an error response body to a single human-readable
// message: JSON bodies contribute their "message" field, anything else is
// used verbatim.
func extractMessage(contentType string, body []byte) string {
	if strings.Contains(contentType, "application/json") {
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
			return payload.Message
		}
	}

	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return "Vote submission failed."
}

func readBodyText(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
