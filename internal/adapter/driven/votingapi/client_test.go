package votingapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/votebooth/internal/adapter/driven/votingapi"
	"github.com/ericfisherdev/votebooth/internal/domain/model"
	"github.com/ericfisherdev/votebooth/internal/domain/port/driven"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *votingapi.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return votingapi.NewClientWithHTTPClient(server.Client(), server.URL)
}

func TestVerifyPIN_Valid(t *testing.T) {
	var gotBody map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/verify-pin", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"alreadyVoted":false}`))
	})

	client := newTestClient(t, handler)
	result, err := client.VerifyPIN(context.Background(), "12345")

	require.NoError(t, err)
	assert.Equal(t, model.VerifyResult{Valid: true, AlreadyVoted: false}, result)
	assert.Equal(t, "12345", gotBody["pin"])
}

func TestVerifyPIN_NotFoundMeansInvalid(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Pin not found", http.StatusNotFound)
	})

	client := newTestClient(t, handler)
	result, err := client.VerifyPIN(context.Background(), "00000")

	// Unknown PIN is an answer, not an error.
	require.NoError(t, err)
	assert.Equal(t, model.VerifyResult{Valid: false, AlreadyVoted: false}, result)
}

func TestVerifyPIN_ServerErrorIsDistinctFromInvalid(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusInternalServerError)
	})

	client := newTestClient(t, handler)
	_, err := client.VerifyPIN(context.Background(), "12345")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
}

func TestVerifyPIN_AlreadyVoted(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"alreadyVoted":true}`))
	})

	client := newTestClient(t, handler)
	result, err := client.VerifyPIN(context.Background(), "12345")

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.AlreadyVoted)
}

func TestFetchCandidates_MapsAndUppercasesPath(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/candidates/KING", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"candidateNumber":1,"name":"Alex Tan","department":"Engineering","imageUrl":"https://img.example/1.jpg"},
			{"candidateNumber":2,"name":"Sam Wu","department":"Business","imageUrl":null}
		]`))
	})

	client := newTestClient(t, handler)
	roster, err := client.FetchCandidates(context.Background(), model.NormalizeCategory("king"))

	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, model.Candidate{Number: 1, Name: "Alex Tan", Department: "Engineering", ImageURL: "https://img.example/1.jpg"}, roster[0])
	assert.Equal(t, "", roster[1].ImageURL)
}

func TestFetchCandidates_EmptyRosterIsNotAnError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	client := newTestClient(t, handler)
	roster, err := client.FetchCandidates(context.Background(), model.CategoryPrince)

	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestFetchCandidates_ServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Failed to load candidates", http.StatusServiceUnavailable)
	})

	client := newTestClient(t, handler)
	_, err := client.FetchCandidates(context.Background(), model.CategoryQueen)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to load candidates")
}

func TestSubmitBallot_Success(t *testing.T) {
	var got map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/voting/bulk-vote", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"All votes submitted successfully"}`))
	})

	client := newTestClient(t, handler)
	receipt, err := client.SubmitBallot(context.Background(), model.Ballot{
		PIN:      "12345",
		DeviceID: "device-1",
		Votes: []model.BallotEntry{
			{Category: model.CategoryKing, CandidateNumber: 3},
			{Category: model.CategoryQueen, CandidateNumber: 1},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "All votes submitted successfully", receipt.Message)
	assert.False(t, receipt.SubmittedAt.IsZero())

	assert.Equal(t, "12345", got["pin"])
	assert.Equal(t, "device-1", got["deviceId"])
	votes, ok := got["votes"].([]any)
	require.True(t, ok)
	assert.Len(t, votes, 2)
}

func TestSubmitBallot_JSONRejection(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"message":"This PIN has already voted"}`))
	})

	client := newTestClient(t, handler)
	_, err := client.SubmitBallot(context.Background(), model.Ballot{PIN: "12345", DeviceID: "d"})

	var rejected *driven.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusConflict, rejected.StatusCode)
	assert.Equal(t, "This PIN has already voted", rejected.Message)
}

func TestSubmitBallot_PlainTextRejection(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Missing category: PRINCE", http.StatusBadRequest)
	})

	client := newTestClient(t, handler)
	_, err := client.SubmitBallot(context.Background(), model.Ballot{PIN: "12345", DeviceID: "d"})

	var rejected *driven.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Missing category: PRINCE", rejected.Message)
}

func TestSubmitBallot_EmptyErrorBodyGetsFallbackMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := newTestClient(t, handler)
	_, err := client.SubmitBallot(context.Background(), model.Ballot{PIN: "12345", DeviceID: "d"})

	var rejected *driven.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Vote submission failed.", rejected.Message)
}

func TestFetchResults_MapsTallies(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/results/all", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"category":"KING",
				"totalVotes":10,
				"candidates":[
					{"candidateNumber":3,"name":"Alex Tan","department":"Engineering","imageUrl":null,"voteCount":7,"percentage":70.0},
					{"candidateNumber":1,"name":"Sam Wu","department":"Business","imageUrl":"https://img.example/1.jpg","voteCount":3,"percentage":30.0}
				]
			}
		]`))
	})

	client := newTestClient(t, handler)
	results, err := client.FetchResults(context.Background())

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.CategoryKing, results[0].Category)
	assert.Equal(t, int64(10), results[0].TotalVotes)
	require.Len(t, results[0].Candidates, 2)
	assert.Equal(t, int64(7), results[0].Candidates[0].VoteCount)
	assert.Equal(t, 70.0, results[0].Candidates[0].Percentage)
}
