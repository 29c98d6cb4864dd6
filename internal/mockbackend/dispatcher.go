package mockbackend

import (
	"context"
	"delivery-marketplace/internal/marketerrors"
	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/operation"
	"delivery-marketplace/utils"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Dispatcher routes operation descriptors to a Backend. It is the resolver's
// fallback when no real backend can be reached.
type Dispatcher struct {
	backend *Backend
}

// NewDispatcher creates a Dispatcher over backend
func NewDispatcher(backend *Backend) *Dispatcher {
	return &Dispatcher{backend: backend}
}

// Handle runs req against the simulated backend. The session slot follows
// token: a synthetic token restores its user, an empty one logs out.
func (d *Dispatcher) Handle(ctx context.Context, token string, req operation.Request) (operation.Response, error) {
	if err := ctx.Err(); err != nil {
		return operation.Response{}, err
	}

	if token == "" {
		d.backend.ClearSession()
	} else {
		d.backend.SetSessionFromToken(token)
	}

	data, status, err := d.dispatch(req)
	if err != nil {
		utils.Warn("mock backend: operation failed", map[string]any{
			"operation": string(req.Op),
			"error":     err.Error(),
		})
		return operation.Response{}, toAPIError(err)
	}

	body, err := json.Marshal(data)
	if err != nil {
		return operation.Response{}, fmt.Errorf("mock backend: encode %s response: %w", req.Op, err)
	}

	utils.Debug("mock backend: operation served", map[string]any{
		"operation": string(req.Op),
		"status":    status,
	})
	return operation.Response{Status: status, Data: body}, nil
}

func (d *Dispatcher) dispatch(req operation.Request) (any, int, error) {
	b := d.backend

	switch req.Op {
	case operation.Login, operation.TokenObtain:
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeBody(req.Body, &in); err != nil {
			return nil, 0, err
		}
		res, err := b.Login(in.Username, in.Password)
		return res, http.StatusOK, err

	case operation.Register:
		var in models.RegisterInput
		if err := decodeBody(req.Body, &in); err != nil {
			return nil, 0, err
		}
		user, err := b.Register(in)
		return user, http.StatusCreated, err

	case operation.GetProfile:
		user, err := b.GetProfile()
		return user, http.StatusOK, err

	case operation.UpdateProfile:
		var patch models.ProfilePatch
		if err := decodeBody(req.Body, &patch); err != nil {
			return nil, 0, err
		}
		user, err := b.UpdateProfile(patch)
		return user, http.StatusOK, err

	case operation.ListJobs:
		jobs, err := b.GetJobs(0)
		return jobs, http.StatusOK, err

	case operation.ListMyJobs:
		jobs, err := b.GetJobs(req.OwnerID)
		return jobs, http.StatusOK, err

	case operation.GetJob:
		job, err := b.GetJob(req.JobID)
		return job, http.StatusOK, err

	case operation.CreateJob:
		var in models.JobInput
		if err := decodeBody(req.Body, &in); err != nil {
			return nil, 0, err
		}
		job, err := b.CreateJob(in)
		return job, http.StatusCreated, err

	case operation.ListBids:
		bids, err := b.GetBids(req.JobID)
		return bids, http.StatusOK, err

	case operation.CreateBid:
		var in models.BidInput
		if err := decodeBody(req.Body, &in); err != nil {
			return nil, 0, err
		}
		bid, err := b.CreateBid(in)
		return bid, http.StatusCreated, err

	case operation.ListMessages:
		msgs, err := b.GetMessages(req.JobID)
		return msgs, http.StatusOK, err

	case operation.CreateMessage:
		var in models.MessageInput
		if err := decodeBody(req.Body, &in); err != nil {
			return nil, 0, err
		}
		msg, err := b.CreateMessage(in)
		return msg, http.StatusCreated, err

	default:
		return nil, 0, fmt.Errorf("mock backend: %q: %w", req.Op, marketerrors.ErrMockOperationUnimplemented)
	}
}

// decodeBody converts whatever the caller passed as body into the typed input
func decodeBody(body any, v any) error {
	if body == nil {
		return nil
	}
	raw, ok := body.(json.RawMessage)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("mock backend: encode request body: %w", err)
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("mock backend: decode request body: %v: %w", err, marketerrors.ErrValidation)
	}
	return nil
}

// toAPIError shapes a mock failure like the HTTP answer of a real backend.
// The kind carries both the cause and the class a real backend's status
// would get, so invalid credentials are also unauthenticated.
func toAPIError(err error) error {
	detail := err
	for _, sentinel := range []error{
		marketerrors.ErrUnauthenticated,
		marketerrors.ErrInvalidCredentials,
		marketerrors.ErrAlreadyExists,
		marketerrors.ErrNotFound,
		marketerrors.ErrValidation,
		marketerrors.ErrMockOperationUnimplemented,
	} {
		if errors.Is(err, sentinel) {
			detail = sentinel
			break
		}
	}

	body, _ := json.Marshal(map[string]string{
		"detail": detail.Error(),
		"error":  err.Error(),
	})
	status := marketerrors.StatusFor(err)
	return &marketerrors.APIError{
		Status: status,
		Body:   body,
		Kind:   errors.Join(err, marketerrors.KindForStatus(status)),
	}
}
