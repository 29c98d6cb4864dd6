package operation

import (
	"context"
	"encoding/json"
	"fmt"
)

//go:generate mockgen -source=operation.go -destination=mock_operation.go -package=operation

// Operation names a logical backend call independent of its route
type Operation string

const (
	Login         Operation = "login"
	Register      Operation = "register"
	TokenObtain   Operation = "token_obtain"
	GetProfile    Operation = "get_profile"
	UpdateProfile Operation = "update_profile"
	ListJobs      Operation = "list_jobs"
	ListMyJobs    Operation = "list_my_jobs"
	GetJob        Operation = "get_job"
	CreateJob     Operation = "create_job"
	ListBids      Operation = "list_bids"
	CreateBid     Operation = "create_bid"
	ListMessages  Operation = "list_messages"
	CreateMessage Operation = "create_message"
)

// All lists every operation in a stable order
var All = []Operation{
	Login, Register, TokenObtain, GetProfile, UpdateProfile,
	ListJobs, ListMyJobs, GetJob, CreateJob,
	ListBids, CreateBid, ListMessages, CreateMessage,
}

// Request is an operation descriptor. JobID addresses a job (path or query),
// OwnerID selects a sender's jobs, Body is sent as JSON.
type Request struct {
	Op      Operation
	JobID   int64
	OwnerID int64
	Body    any
}

// Response is the normalized answer, whichever route or backend produced it
type Response struct {
	Status int
	Data   json.RawMessage
}

// Decode unmarshals the response payload into v
func (r Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("decode %T: empty response body", v)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// Doer runs an operation against whichever backend answers it
type Doer interface {
	Do(ctx context.Context, req Request) (Response, error)
}
