package repository

import (
	"delivery-marketplace/internal/marketerrors"
	model "delivery-marketplace/internal/models"
	"fmt"
	"strings"
	"sync"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// MarketDB defines the storage interface of the simulated marketplace backend
type MarketDB interface {
	CreateUser(user model.User) (model.User, error)
	GetUserByID(id int64) (model.User, error)
	GetUserByUsername(username string) (model.User, error)
	UpdateUser(user model.User) error
	CreateJob(job model.Job) (model.Job, error)
	GetJob(id int64) (model.Job, error)
	ListJobs(senderID int64) ([]model.Job, error)
	CreateBid(bid model.Bid) (model.Bid, error)
	ListBids(jobID int64) ([]model.Bid, error)
	CreateMessage(msg model.Message) (model.Message, error)
	ListMessages(jobID int64) ([]model.Message, error)
}

// counters hold the next id per entity class
type counters struct {
	users, jobs, bids, messages int64
}

// MemoryRepo is a concurrency-safe in-memory implementation of MarketDB.
// Records keep insertion order and ids are never reused.
type MemoryRepo struct {
	mu       sync.RWMutex
	users    []model.User
	jobs     []model.Job
	bids     []model.Bid
	messages []model.Message
	nextID   counters
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextID: counters{users: 1, jobs: 1, bids: 1, messages: 1},
	}
}

// CreateUser appends a user with the next id. Username and email must be unused.
func (r *MemoryRepo) CreateUser(user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || (user.Email != "" && strings.EqualFold(u.Email, user.Email)) {
			return model.User{}, fmt.Errorf("create user %s: %w", user.Username, marketerrors.ErrAlreadyExists)
		}
	}

	user.ID = r.nextID.users
	r.nextID.users++
	r.users = append(r.users, user)
	return user, nil
}

// GetUserByID returns the user with the given id
func (r *MemoryRepo) GetUserByID(id int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.userIndex(id); i >= 0 {
		return r.users[i], nil
	}
	return model.User{}, fmt.Errorf("get user %d: %w", id, marketerrors.ErrNotFound)
}

// GetUserByUsername returns the user registered under username
func (r *MemoryRepo) GetUserByUsername(username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("get user %q: %w", username, marketerrors.ErrNotFound)
}

// UpdateUser replaces the stored record that has the same id. The email must
// stay unused by every other user.
func (r *MemoryRepo) UpdateUser(user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.userIndex(user.ID)
	if i < 0 {
		return fmt.Errorf("update user %d: %w", user.ID, marketerrors.ErrNotFound)
	}
	for _, u := range r.users {
		if u.ID != user.ID && user.Email != "" && strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("update user %d: email %s: %w", user.ID, user.Email, marketerrors.ErrAlreadyExists)
		}
	}
	r.users[i] = user
	return nil
}

// CreateJob appends a job owned by an existing sender
func (r *MemoryRepo) CreateJob(job model.Job) (model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.userIndex(job.Sender) < 0 {
		return model.Job{}, fmt.Errorf("create job for sender %d: %w", job.Sender, marketerrors.ErrNotFound)
	}

	job.ID = r.nextID.jobs
	r.nextID.jobs++
	r.jobs = append(r.jobs, job)
	return job, nil
}

// GetJob returns the job with the given id
func (r *MemoryRepo) GetJob(id int64) (model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.jobIndex(id); i >= 0 {
		return r.jobs[i], nil
	}
	return model.Job{}, fmt.Errorf("get job %d: %w", id, marketerrors.ErrNotFound)
}

// ListJobs returns all jobs, or only those of senderID when it is non-zero
func (r *MemoryRepo) ListJobs(senderID int64) ([]model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]model.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		if senderID == 0 || j.Sender == senderID {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

// CreateBid appends a bid on an existing job by an existing traveler
func (r *MemoryRepo) CreateBid(bid model.Bid) (model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.jobIndex(bid.Job) < 0 {
		return model.Bid{}, fmt.Errorf("create bid on job %d: %w", bid.Job, marketerrors.ErrNotFound)
	}
	if r.userIndex(bid.Traveler) < 0 {
		return model.Bid{}, fmt.Errorf("create bid by user %d: %w", bid.Traveler, marketerrors.ErrNotFound)
	}

	bid.ID = r.nextID.bids
	r.nextID.bids++
	r.bids = append(r.bids, bid)
	return bid, nil
}

// ListBids returns all bids, or only those on jobID when it is non-zero
func (r *MemoryRepo) ListBids(jobID int64) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := make([]model.Bid, 0, len(r.bids))
	for _, b := range r.bids {
		if jobID == 0 || b.Job == jobID {
			bids = append(bids, b)
		}
	}
	return bids, nil
}

// CreateMessage appends a message to a job's chat. The timestamp is raised
// to the previous message's when the clock went backwards.
func (r *MemoryRepo) CreateMessage(msg model.Message) (model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.jobIndex(msg.Job) < 0 {
		return model.Message{}, fmt.Errorf("create message on job %d: %w", msg.Job, marketerrors.ErrNotFound)
	}
	if r.userIndex(msg.Sender) < 0 {
		return model.Message{}, fmt.Errorf("create message by user %d: %w", msg.Sender, marketerrors.ErrNotFound)
	}

	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].Job == msg.Job {
			if msg.Timestamp.Before(r.messages[i].Timestamp) {
				msg.Timestamp = r.messages[i].Timestamp
			}
			break
		}
	}

	msg.ID = r.nextID.messages
	r.nextID.messages++
	r.messages = append(r.messages, msg)
	return msg, nil
}

// ListMessages returns the messages of jobID in creation order
func (r *MemoryRepo) ListMessages(jobID int64) ([]model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := make([]model.Message, 0)
	for _, m := range r.messages {
		if m.Job == jobID {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

func (r *MemoryRepo) userIndex(id int64) int {
	for i, u := range r.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepo) jobIndex(id int64) int {
	for i, j := range r.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}
