package marketplace

import (
	"context"
	"delivery-marketplace/internal/marketerrors"
	model "delivery-marketplace/internal/models"
	"delivery-marketplace/internal/mockbackend"
	"delivery-marketplace/internal/operation"
	"delivery-marketplace/internal/repository"
	"delivery-marketplace/internal/resolver"
	"delivery-marketplace/internal/validation"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type offlineTransport struct{}

func (offlineTransport) Do(_ context.Context, method, path, _ string, _ any) (operation.Response, error) {
	return operation.Response{}, fmt.Errorf("%s %s: connection refused: %w", method, path, marketerrors.ErrNetworkUnreachable)
}

// staticToken signs every request as one user
type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

// offlineAPI returns a resolver that always ends up on a freshly seeded mock backend
func offlineAPI(t *testing.T, userID int64) *resolver.Resolver {
	t.Helper()
	repo := repository.NewMemoryRepo()
	require.NoError(t, mockbackend.Seed(repo))
	backend := mockbackend.NewBackend(repo).WithClock(func() time.Time { return fixedNow })

	token := ""
	if userID != 0 {
		token = mockbackend.MintToken(userID)
	}
	return resolver.New(offlineTransport{}, staticToken(token),
		resolver.WithFallback(mockbackend.NewDispatcher(backend)))
}

func newValidator() *validation.Validator {
	return validation.New(func() time.Time { return fixedNow })
}

func jsonResponse(t *testing.T, v any) operation.Response {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return operation.Response{Status: 200, Data: data}
}

func TestJobs_List(t *testing.T) {
	ctx := context.Background()
	sender := model.User{ID: 1, Username: "sender1", Role: model.RoleSender}
	traveler := model.User{ID: 2, Username: "traveler1", Role: model.RoleTraveler}

	t.Run("offline_sender_sees_own_jobs", func(t *testing.T) {
		jobs, err := NewJobs(offlineAPI(t, 1), newValidator()).List(ctx, sender)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		for _, j := range jobs {
			require.Equal(t, sender.ID, j.Sender)
		}
	})

	t.Run("offline_traveler_sees_board", func(t *testing.T) {
		jobs, err := NewJobs(offlineAPI(t, 2), newValidator()).List(ctx, traveler)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
	})

	t.Run("operation_follows_role", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := operation.NewMockDoer(ctrl)
		gomock.InOrder(
			api.EXPECT().Do(ctx, operation.Request{Op: operation.ListMyJobs, OwnerID: 1}).
				Return(jsonResponse(t, []model.Job{{ID: 1, Sender: 1}}), nil),
			api.EXPECT().Do(ctx, operation.Request{Op: operation.ListJobs}).
				Return(jsonResponse(t, map[string]any{"results": []any{}}), nil),
		)

		jobs := NewJobs(api, newValidator())
		mine, err := jobs.List(ctx, sender)
		require.NoError(t, err)
		require.Len(t, mine, 1)

		board, err := jobs.List(ctx, traveler)
		require.NoError(t, err)
		require.NotNil(t, board)
		require.Empty(t, board)
	})
}

func TestJobs_GetAndCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("offline_create_then_get", func(t *testing.T) {
		jobs := NewJobs(offlineAPI(t, 1), newValidator())

		created, err := jobs.Create(ctx, validation.JobForm{
			GoodsName:      "Laptop",
			PickupLocation: "1 First St",
			DropLocation:   "2 Second St",
			DeliveryTime:   fixedNow.Add(48 * time.Hour),
		})
		require.NoError(t, err)
		require.Equal(t, int64(3), created.ID)
		require.Equal(t, int64(1), created.Sender)

		got, err := jobs.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "Laptop", got.GoodsName)
		require.True(t, got.DeliveryTime.Equal(fixedNow.Add(48*time.Hour)))
	})

	t.Run("offline_missing_job", func(t *testing.T) {
		_, err := NewJobs(offlineAPI(t, 1), newValidator()).Get(ctx, 99)
		require.ErrorIs(t, err, marketerrors.ErrNotFound)
	})

	t.Run("rejected_form_is_never_sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := operation.NewMockDoer(ctrl)

		_, err := NewJobs(api, newValidator()).Create(ctx, validation.JobForm{
			GoodsName:      "Laptop",
			PickupLocation: "1 First St",
			DropLocation:   "2 Second St",
			DeliveryTime:   fixedNow.Add(-time.Hour),
		})
		require.ErrorIs(t, err, marketerrors.ErrValidation)
	})

	t.Run("offline_create_needs_session", func(t *testing.T) {
		_, err := NewJobs(offlineAPI(t, 0), newValidator()).Create(ctx, validation.JobForm{
			GoodsName:      "Laptop",
			PickupLocation: "1 First St",
			DropLocation:   "2 Second St",
			DeliveryTime:   fixedNow.Add(time.Hour),
		})
		require.ErrorIs(t, err, marketerrors.ErrUnauthenticated)
	})
}

func TestBids(t *testing.T) {
	ctx := context.Background()
	traveler := model.User{ID: 2, Username: "traveler1", Role: model.RoleTraveler}

	t.Run("offline_list_and_find", func(t *testing.T) {
		bids, err := NewBids(offlineAPI(t, 2), newValidator()).List(ctx, 1)
		require.NoError(t, err)
		require.Len(t, bids, 1)

		mine, ok := FindUserBid(bids, traveler)
		require.True(t, ok)
		require.Equal(t, model.Amount(25), mine.Amount)

		_, ok = FindUserBid(bids, model.User{ID: 7, Username: "someone"})
		require.False(t, ok)
	})

	t.Run("offline_place", func(t *testing.T) {
		svc := NewBids(offlineAPI(t, 2), newValidator())

		bid, err := svc.Place(ctx, validation.BidForm{Job: 2, Amount: 40, Message: "Tomorrow works"})
		require.NoError(t, err)
		require.Equal(t, model.BidStatusPending, bid.Status)
		require.Equal(t, "traveler1", bid.TravelerUsername)

		bids, err := svc.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, bids, 1)
	})

	t.Run("invalid_amount_is_never_sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		_, err := NewBids(operation.NewMockDoer(ctrl), newValidator()).
			Place(ctx, validation.BidForm{Job: 2, Amount: -1, Message: "x"})
		require.ErrorIs(t, err, marketerrors.ErrValidation)
	})

	t.Run("non_array_payload_is_empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := operation.NewMockDoer(ctrl)
		api.EXPECT().Do(ctx, operation.Request{Op: operation.ListBids, JobID: 1}).
			Return(jsonResponse(t, map[string]string{"detail": "no bids"}), nil)

		bids, err := NewBids(api, newValidator()).List(ctx, 1)
		require.NoError(t, err)
		require.Empty(t, bids)
	})

	t.Run("decimal_string_amounts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := operation.NewMockDoer(ctrl)
		api.EXPECT().Do(ctx, operation.Request{Op: operation.ListBids, JobID: 1}).
			Return(operation.Response{Status: 200, Data: json.RawMessage(
				`[{"id":1,"job":1,"traveler":2,"traveler_username":"traveler1","amount":"25.00","message":"ok","status":"pending"},` +
					`{"id":2,"job":1,"traveler":3,"traveler_username":"other","amount":12.5,"message":"me too","status":"pending"}]`)}, nil)

		bids, err := NewBids(api, newValidator()).List(ctx, 1)
		require.NoError(t, err)
		require.Len(t, bids, 2)
		require.Equal(t, model.Amount(12.5), bids[1].Amount)

		mine, ok := FindUserBid(bids, traveler)
		require.True(t, ok)
		require.Equal(t, model.Amount(25), mine.Amount)
	})
}

func TestDecodeList_StringAmount(t *testing.T) {
	bids, err := decodeList[model.Bid](operation.Response{Data: json.RawMessage(`[{"id":1,"amount":"25.00"}]`)})
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, model.Amount(25), bids[0].Amount)

	_, err = decodeList[model.Bid](operation.Response{Data: json.RawMessage(`[{"id":1,"amount":"lots"}]`)})
	require.Error(t, err)
}

func TestFindUserBid(t *testing.T) {
	bids := []model.Bid{
		{ID: 1, Traveler: 5},
		{ID: 2, TravelerUsername: "ann"},
		{ID: 3, TravelerID: 8},
	}

	tests := []struct {
		name   string
		user   model.User
		wantID int64
		wantOK bool
	}{
		{name: "by_traveler", user: model.User{ID: 5}, wantID: 1, wantOK: true},
		{name: "by_username", user: model.User{ID: 6, Username: "ann"}, wantID: 2, wantOK: true},
		{name: "by_traveler_id", user: model.User{ID: 8}, wantID: 3, wantOK: true},
		{name: "anonymous_matches_nothing", user: model.User{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bid, ok := FindUserBid(bids, tc.user)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.wantID, bid.ID)
		})
	}
}

func TestChat_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("offline_send_returns_refetched_conversation", func(t *testing.T) {
		chat := NewChat(offlineAPI(t, 2), newValidator())

		msgs, err := chat.Send(ctx, 1, "  On my way  ")
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		require.Equal(t, "On my way", msgs[2].Text)
		require.Equal(t, "traveler1", msgs[2].SenderUsername)
		require.False(t, msgs[2].Timestamp.Before(msgs[1].Timestamp))
	})

	t.Run("blank_text_is_never_sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		_, err := NewChat(operation.NewMockDoer(ctrl), newValidator()).Send(ctx, 1, "   ")
		require.ErrorIs(t, err, marketerrors.ErrValidation)
	})

	t.Run("send_failure_skips_refetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := operation.NewMockDoer(ctrl)
		api.EXPECT().Do(ctx, gomock.Any()).
			Return(operation.Response{}, &marketerrors.APIError{Status: 500, Kind: marketerrors.ErrBackend})

		_, err := NewChat(api, newValidator()).Send(ctx, 1, "hi")
		require.ErrorIs(t, err, marketerrors.ErrBackend)
	})
}

func TestChat_Poll(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := operation.NewMockDoer(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listReq := operation.Request{Op: operation.ListMessages, JobID: 1}
	gomock.InOrder(
		api.EXPECT().Do(gomock.Any(), listReq).Return(operation.Response{}, errors.New("flaky")),
		api.EXPECT().Do(gomock.Any(), listReq).Return(jsonResponse(t, []model.Message{{ID: 1}}), nil).MinTimes(2),
	)

	var (
		mu    sync.Mutex
		calls int
		errs  int
	)
	err := NewChat(api, newValidator()).Poll(ctx, 1, 5*time.Millisecond, func(msgs []model.Message, err error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if err != nil {
			errs++
		}
		if calls == 3 {
			cancel()
		}
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 3, calls)
	require.Equal(t, 1, errs)
}
