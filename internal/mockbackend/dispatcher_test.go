package mockbackend

import (
	"context"
	"delivery-marketplace/internal/marketerrors"
	model "delivery-marketplace/internal/models"
	"delivery-marketplace/internal/operation"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatcher_Handle(t *testing.T) {
	ctx := context.Background()
	dispatcher := NewDispatcher(newSeededBackend(t))

	// login through the dispatcher, then use the token like a client would
	resp, err := dispatcher.Handle(ctx, "", operation.Request{
		Op:   operation.Login,
		Body: map[string]string{"username": "traveler1", "password": "pw"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)

	var login model.LoginResult
	require.NoError(t, resp.Decode(&login))
	token := login.Token
	require.Equal(t, "mock-token-2", token)

	tests := []struct {
		name       string
		token      string
		req        operation.Request
		wantStatus int
		wantError  error
		validate   func(t *testing.T, resp operation.Response)
	}{
		{
			name:       "profile",
			token:      token,
			req:        operation.Request{Op: operation.GetProfile},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, resp operation.Response) {
				var u model.User
				require.NoError(t, resp.Decode(&u))
				require.Equal(t, "traveler1", u.Username)
				require.Equal(t, model.RoleTraveler, u.Role)
			},
		},
		{
			name:      "profile_without_token",
			req:       operation.Request{Op: operation.GetProfile},
			wantError: marketerrors.ErrUnauthenticated,
		},
		{
			name:       "my_jobs",
			token:      token,
			req:        operation.Request{Op: operation.ListMyJobs, OwnerID: 1},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, resp operation.Response) {
				var jobs []model.Job
				require.NoError(t, resp.Decode(&jobs))
				require.Len(t, jobs, 2)
			},
		},
		{
			name:       "create_bid_typed_body",
			token:      token,
			req:        operation.Request{Op: operation.CreateBid, Body: model.BidInput{Job: 2, Amount: 12.5, Message: "ok"}},
			wantStatus: http.StatusCreated,
			validate: func(t *testing.T, resp operation.Response) {
				var bid model.Bid
				require.NoError(t, resp.Decode(&bid))
				require.Equal(t, int64(2), bid.Traveler)
				require.Equal(t, model.Amount(12.5), bid.Amount)
			},
		},
		{
			name:       "list_bids_for_job",
			token:      token,
			req:        operation.Request{Op: operation.ListBids, JobID: 2},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, resp operation.Response) {
				var bids []model.Bid
				require.NoError(t, resp.Decode(&bids))
				require.Len(t, bids, 1)
			},
		},
		{
			name:  "create_job_raw_json",
			token: token,
			req: operation.Request{Op: operation.CreateJob, Body: json.RawMessage(
				`{"goods_name":"Cake","pickup_location":"A","drop_location":"B","delivery_time":"` +
					time.Now().Add(time.Hour).UTC().Format(time.RFC3339) + `"}`)},
			wantStatus: http.StatusCreated,
		},
		{
			name:      "malformed_body",
			token:     token,
			req:       operation.Request{Op: operation.CreateMessage, Body: json.RawMessage(`{"job":"one"}`)},
			wantError: marketerrors.ErrValidation,
		},
		{
			name:      "missing_job",
			token:     token,
			req:       operation.Request{Op: operation.GetJob, JobID: 404},
			wantError: marketerrors.ErrNotFound,
		},
		{
			name:      "unknown_operation",
			token:     token,
			req:       operation.Request{Op: "delete_everything"},
			wantError: marketerrors.ErrMockOperationUnimplemented,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := dispatcher.Handle(ctx, tc.token, tc.req)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				var apiErr *marketerrors.APIError
				require.True(t, errors.As(err, &apiErr))
				require.Equal(t, marketerrors.StatusFor(tc.wantError), apiErr.Status)
				require.NotEmpty(t, apiErr.Message())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantStatus, resp.Status)
			if tc.validate != nil {
				tc.validate(t, resp)
			}
		})
	}
}

func TestDispatcher_ErrorKindMatchesStatus(t *testing.T) {
	ctx := context.Background()
	dispatcher := NewDispatcher(newSeededBackend(t))

	tests := []struct {
		name      string
		token     string
		req       operation.Request
		wantCause error
		wantKind  error
	}{
		{
			name:      "invalid_credentials",
			req:       operation.Request{Op: operation.Login, Body: map[string]string{"username": "ghost", "password": "pw"}},
			wantCause: marketerrors.ErrInvalidCredentials,
			wantKind:  marketerrors.ErrUnauthenticated,
		},
		{
			name:      "duplicate_registration",
			req:       operation.Request{Op: operation.Register, Body: map[string]string{"username": "sender1", "email": "x@example.com", "role": "sender"}},
			wantCause: marketerrors.ErrAlreadyExists,
			wantKind:  marketerrors.ErrValidation,
		},
		{
			name:      "missing_job",
			token:     MintToken(2),
			req:       operation.Request{Op: operation.GetJob, JobID: 404},
			wantCause: marketerrors.ErrNotFound,
			wantKind:  marketerrors.ErrRouteNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dispatcher.Handle(ctx, tc.token, tc.req)
			require.ErrorIs(t, err, tc.wantCause)
			require.ErrorIs(t, err, tc.wantKind)
		})
	}
}

func TestDispatcher_CancelledContext(t *testing.T) {
	dispatcher := NewDispatcher(newSeededBackend(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dispatcher.Handle(ctx, "", operation.Request{Op: operation.ListJobs})
	require.ErrorIs(t, err, context.Canceled)
}
