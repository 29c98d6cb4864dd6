package mockbackend

import (
	"delivery-marketplace/internal/marketerrors"
	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/repository"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TokenPrefix starts every token the simulated backend hands out
const TokenPrefix = "mock-token-"

// MintToken returns the synthetic bearer token of a user
func MintToken(userID int64) string {
	return TokenPrefix + strconv.FormatInt(userID, 10)
}

// ParseToken extracts the user id from a synthetic token
func ParseToken(token string) (int64, bool) {
	if !strings.HasPrefix(token, TokenPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(token, TokenPrefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Backend simulates the marketplace API in memory. It holds a single
// session slot; use Fork for an independent session over the same data.
type Backend struct {
	repo repository.MarketDB
	now  func() time.Time

	mu          sync.Mutex
	sessionUser int64
}

// NewBackend creates a Backend over repo
func NewBackend(repo repository.MarketDB) *Backend {
	return &Backend{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used for created_at and timestamp fields
func (b *Backend) WithClock(now func() time.Time) *Backend {
	b.now = now
	return b
}

// Fork returns a Backend sharing the store but with an empty session slot
func (b *Backend) Fork() *Backend {
	return &Backend{repo: b.repo, now: b.now}
}

// SetSessionFromToken restores the session user from a synthetic token.
// Tokens of any other format leave the session untouched.
func (b *Backend) SetSessionFromToken(token string) {
	id, ok := ParseToken(token)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.repo.GetUserByID(id); err != nil {
		b.sessionUser = 0
		return
	}
	b.sessionUser = id
}

// ClearSession logs the session user out
func (b *Backend) ClearSession() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionUser = 0
}

// currentUser returns the session user, re-read from the store
func (b *Backend) currentUser() (models.User, error) {
	b.mu.Lock()
	id := b.sessionUser
	b.mu.Unlock()

	if id == 0 {
		return models.User{}, marketerrors.ErrUnauthenticated
	}
	u, err := b.repo.GetUserByID(id)
	if err != nil {
		return models.User{}, fmt.Errorf("session user %d: %w", id, marketerrors.ErrUnauthenticated)
	}
	return u, nil
}

// Login starts a session for username. Any non-empty password is accepted.
func (b *Backend) Login(username, password string) (models.LoginResult, error) {
	if password == "" {
		return models.LoginResult{}, fmt.Errorf("mock: login %q: %w", username, marketerrors.ErrInvalidCredentials)
	}

	user, err := b.repo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, marketerrors.ErrNotFound) {
			return models.LoginResult{}, fmt.Errorf("mock: login %q: %w", username, marketerrors.ErrInvalidCredentials)
		}
		return models.LoginResult{}, fmt.Errorf("mock: login %q: %w", username, err)
	}

	b.mu.Lock()
	b.sessionUser = user.ID
	b.mu.Unlock()

	token := MintToken(user.ID)
	return models.LoginResult{Access: token, Token: token, User: user}, nil
}

// Register creates a new account
func (b *Backend) Register(in models.RegisterInput) (models.User, error) {
	user := models.User{
		Username:        in.Username,
		Email:           in.Email,
		Role:            models.NormalizeRole(string(in.Role)),
		Phone:           in.Phone,
		Address:         in.Address,
		Bio:             in.Bio,
		VehicleType:     in.VehicleType,
		LicenseNumber:   in.LicenseNumber,
		ExperienceYears: in.ExperienceYears,
		CreatedAt:       b.now(),
	}

	created, err := b.repo.CreateUser(user)
	if err != nil {
		return models.User{}, fmt.Errorf("mock: register %q: %w", in.Username, err)
	}
	return created, nil
}

// GetProfile returns the session user
func (b *Backend) GetProfile() (models.User, error) {
	user, err := b.currentUser()
	if err != nil {
		return models.User{}, fmt.Errorf("mock: get profile: %w", err)
	}
	return user, nil
}

// UpdateProfile merges patch into the session user
func (b *Backend) UpdateProfile(patch models.ProfilePatch) (models.User, error) {
	user, err := b.currentUser()
	if err != nil {
		return models.User{}, fmt.Errorf("mock: update profile: %w", err)
	}

	patch.Apply(&user)
	if err := b.repo.UpdateUser(user); err != nil {
		return models.User{}, fmt.Errorf("mock: update profile of user %d: %w", user.ID, err)
	}
	return user, nil
}

// GetJobs returns every job, or only those of ownerID when it is non-zero
func (b *Backend) GetJobs(ownerID int64) ([]models.Job, error) {
	jobs, err := b.repo.ListJobs(ownerID)
	if err != nil {
		return nil, fmt.Errorf("mock: list jobs: %w", err)
	}
	return jobs, nil
}

// CreateJob posts a job owned by the session user
func (b *Backend) CreateJob(in models.JobInput) (models.Job, error) {
	user, err := b.currentUser()
	if err != nil {
		return models.Job{}, fmt.Errorf("mock: create job: %w", err)
	}

	job, err := b.repo.CreateJob(models.Job{
		GoodsName:      in.GoodsName,
		PickupLocation: in.PickupLocation,
		DropLocation:   in.DropLocation,
		DeliveryTime:   in.DeliveryTime,
		Sender:         user.ID,
		CreatedAt:      b.now(),
	})
	if err != nil {
		return models.Job{}, fmt.Errorf("mock: create job: %w", err)
	}
	return job, nil
}

// GetJob returns a single job
func (b *Backend) GetJob(id int64) (models.Job, error) {
	job, err := b.repo.GetJob(id)
	if err != nil {
		return models.Job{}, fmt.Errorf("mock: get job: %w", err)
	}
	return job, nil
}

// GetBids returns every bid, or only those on jobID when it is non-zero
func (b *Backend) GetBids(jobID int64) ([]models.Bid, error) {
	bids, err := b.repo.ListBids(jobID)
	if err != nil {
		return nil, fmt.Errorf("mock: list bids: %w", err)
	}
	return bids, nil
}

// CreateBid places a pending bid by the session user
func (b *Backend) CreateBid(in models.BidInput) (models.Bid, error) {
	user, err := b.currentUser()
	if err != nil {
		return models.Bid{}, fmt.Errorf("mock: create bid: %w", err)
	}

	bid, err := b.repo.CreateBid(models.Bid{
		Job:              in.Job,
		Traveler:         user.ID,
		TravelerUsername: user.Username,
		Amount:           models.Amount(in.Amount),
		Message:          in.Message,
		Status:           models.BidStatusPending,
		CreatedAt:        b.now(),
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("mock: create bid on job %d: %w", in.Job, err)
	}
	return bid, nil
}

// GetMessages returns a job's chat in creation order
func (b *Backend) GetMessages(jobID int64) ([]models.Message, error) {
	msgs, err := b.repo.ListMessages(jobID)
	if err != nil {
		return nil, fmt.Errorf("mock: list messages: %w", err)
	}
	return msgs, nil
}

// CreateMessage appends a chat message from the session user
func (b *Backend) CreateMessage(in models.MessageInput) (models.Message, error) {
	user, err := b.currentUser()
	if err != nil {
		return models.Message{}, fmt.Errorf("mock: create message: %w", err)
	}

	msg, err := b.repo.CreateMessage(models.Message{
		Job:            in.Job,
		Sender:         user.ID,
		SenderUsername: user.Username,
		Text:           in.Text,
		Timestamp:      b.now(),
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("mock: create message on job %d: %w", in.Job, err)
	}
	return msg, nil
}
