package repository

import (
	"delivery-marketplace/internal/marketerrors"
	model "delivery-marketplace/internal/models"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Helper to create a new User
func newUser(username string, role model.Role) model.User {
	return model.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Role:     role,
	}
}

// Helper to seed a repo with one sender, one traveler and one job
func seededRepo(t *testing.T) (*MemoryRepo, model.User, model.User, model.Job) {
	t.Helper()
	repo := NewMemoryRepo()

	sender, err := repo.CreateUser(newUser("sender1", model.RoleSender))
	require.NoError(t, err)
	traveler, err := repo.CreateUser(newUser("traveler1", model.RoleTraveler))
	require.NoError(t, err)
	job, err := repo.CreateJob(model.Job{GoodsName: "Documents", Sender: sender.ID, CreatedAt: time.Now()})
	require.NoError(t, err)

	return repo, sender, traveler, job
}

// Test CreateUser
func TestMemoryRepo_CreateUser(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	first, err := repo.CreateUser(newUser("sender1", model.RoleSender))
	require.NoError(t, err)
	require.Equal(t, int64(1), first.ID)

	tests := []struct {
		name      string
		user      model.User
		wantError error
	}{
		{name: "duplicate_username", user: model.User{Username: "sender1", Email: "other@example.com"}, wantError: marketerrors.ErrAlreadyExists},
		{name: "duplicate_email", user: model.User{Username: "other", Email: "sender1@example.com"}, wantError: marketerrors.ErrAlreadyExists},
		{name: "duplicate_email_case", user: model.User{Username: "other2", Email: "SENDER1@example.com"}, wantError: marketerrors.ErrAlreadyExists},
		{name: "new_user", user: newUser("traveler1", model.RoleTraveler)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := repo.CreateUser(tc.user)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, int64(2), u.ID)
		})
	}

	t.Run("ids_not_reused_after_rejection", func(t *testing.T) {
		u, err := repo.CreateUser(newUser("third", model.RoleSender))
		require.NoError(t, err)
		require.Equal(t, int64(3), u.ID)
	})
}

// Test UpdateUser and lookups
func TestMemoryRepo_UpdateUser(t *testing.T) {
	t.Parallel()

	repo, sender, traveler, _ := seededRepo(t)

	sender.Phone = "555"
	require.NoError(t, repo.UpdateUser(sender))

	got, err := repo.GetUserByUsername("sender1")
	require.NoError(t, err)
	require.Equal(t, "555", got.Phone)

	got, err = repo.GetUserByID(sender.ID)
	require.NoError(t, err)
	require.Equal(t, "555", got.Phone)

	err = repo.UpdateUser(model.User{ID: 99})
	require.ErrorIs(t, err, marketerrors.ErrNotFound)

	// keeping its own email is fine, taking another user's is not
	sender.Email = "SENDER1@example.com"
	require.NoError(t, repo.UpdateUser(sender))

	traveler.Email = "Sender1@Example.com"
	err = repo.UpdateUser(traveler)
	require.ErrorIs(t, err, marketerrors.ErrAlreadyExists)

	got, err = repo.GetUserByUsername("traveler1")
	require.NoError(t, err)
	require.Equal(t, "traveler1@example.com", got.Email)

	_, err = repo.GetUserByUsername("ghost")
	require.ErrorIs(t, err, marketerrors.ErrNotFound)
}

// Test CreateJob, GetJob and ListJobs
func TestMemoryRepo_Jobs(t *testing.T) {
	t.Parallel()

	repo, sender, traveler, job := seededRepo(t)

	_, err := repo.CreateJob(model.Job{GoodsName: "Orphan", Sender: 42})
	require.ErrorIs(t, err, marketerrors.ErrNotFound)

	second, err := repo.CreateJob(model.Job{GoodsName: "Laptop", Sender: traveler.ID})
	require.NoError(t, err)
	require.Equal(t, job.ID+1, second.ID)

	got, err := repo.GetJob(job.ID)
	require.NoError(t, err)
	require.Equal(t, "Documents", got.GoodsName)

	_, err = repo.GetJob(404)
	require.ErrorIs(t, err, marketerrors.ErrNotFound)

	tests := []struct {
		name     string
		senderID int64
		wantIDs  []int64
	}{
		{name: "all_jobs", senderID: 0, wantIDs: []int64{job.ID, second.ID}},
		{name: "sender_jobs", senderID: sender.ID, wantIDs: []int64{job.ID}},
		{name: "unknown_sender", senderID: 77, wantIDs: []int64{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			jobs, err := repo.ListJobs(tc.senderID)
			require.NoError(t, err)
			ids := make([]int64, 0, len(jobs))
			for _, j := range jobs {
				ids = append(ids, j.ID)
			}
			require.Equal(t, tc.wantIDs, ids)
		})
	}
}

// Test CreateBid and ListBids
func TestMemoryRepo_Bids(t *testing.T) {
	t.Parallel()

	repo, sender, traveler, job := seededRepo(t)
	other, err := repo.CreateJob(model.Job{GoodsName: "Flowers", Sender: sender.ID})
	require.NoError(t, err)

	tests := []struct {
		name      string
		bid       model.Bid
		wantError error
	}{
		{name: "valid_bid", bid: model.Bid{Job: job.ID, Traveler: traveler.ID, Amount: 25}},
		{name: "second_job", bid: model.Bid{Job: other.ID, Traveler: traveler.ID, Amount: 10}},
		{name: "same_job_again", bid: model.Bid{Job: job.ID, Traveler: traveler.ID, Amount: 30}},
		{name: "unknown_job", bid: model.Bid{Job: 99, Traveler: traveler.ID, Amount: 5}, wantError: marketerrors.ErrNotFound},
		{name: "unknown_traveler", bid: model.Bid{Job: job.ID, Traveler: 99, Amount: 5}, wantError: marketerrors.ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.CreateBid(tc.bid)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}
			require.NoError(t, err)
		})
	}

	onJob, err := repo.ListBids(job.ID)
	require.NoError(t, err)
	require.Len(t, onJob, 2)
	require.Equal(t, model.Amount(25), onJob[0].Amount)
	require.Equal(t, model.Amount(30), onJob[1].Amount)

	all, err := repo.ListBids(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

// Test CreateMessage and ListMessages
func TestMemoryRepo_Messages(t *testing.T) {
	t.Parallel()

	repo, sender, traveler, job := seededRepo(t)
	now := time.Now().UTC()

	first, err := repo.CreateMessage(model.Message{Job: job.ID, Sender: sender.ID, Text: "hi", Timestamp: now})
	require.NoError(t, err)

	// clock went backwards: timestamp is raised to the previous one
	second, err := repo.CreateMessage(model.Message{Job: job.ID, Sender: traveler.ID, Text: "hello", Timestamp: now.Add(-time.Minute)})
	require.NoError(t, err)
	require.False(t, second.Timestamp.Before(first.Timestamp))

	_, err = repo.CreateMessage(model.Message{Job: 99, Sender: sender.ID, Text: "lost"})
	require.ErrorIs(t, err, marketerrors.ErrNotFound)

	msgs, err := repo.ListMessages(job.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "hi", msgs[0].Text)
	require.Equal(t, "hello", msgs[1].Text)

	empty, err := repo.ListMessages(99)
	require.NoError(t, err)
	require.Empty(t, empty)
}

// concurrency test
func TestMemoryRepo_ConcurrentBids(t *testing.T) {
	t.Parallel()

	repo, _, traveler, job := seededRepo(t)

	var wg sync.WaitGroup
	concurrentCount := 50

	for i := 0; i < concurrentCount; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			_, err := repo.CreateBid(model.Bid{Job: job.ID, Traveler: traveler.ID, Amount: model.Amount(10 + i)})
			require.NoError(t, err)
		}()
	}

	wg.Wait()

	bids, err := repo.ListBids(job.ID)
	require.NoError(t, err)
	require.Len(t, bids, concurrentCount)

	seen := make(map[int64]bool, concurrentCount)
	for _, b := range bids {
		require.False(t, seen[b.ID], "bid id %d reused", b.ID)
		seen[b.ID] = true
	}
}
