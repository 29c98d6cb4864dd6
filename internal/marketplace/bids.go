package marketplace

import (
	"context"
	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/operation"
	"delivery-marketplace/internal/validation"
	"delivery-marketplace/utils"
	"fmt"
)

// Bids lists and places offers on a job
type Bids struct {
	api      operation.Doer
	validate *validation.Validator
}

// NewBids creates the bids service
func NewBids(api operation.Doer, v *validation.Validator) *Bids {
	return &Bids{api: api, validate: v}
}

// List returns the bids on jobID
func (b *Bids) List(ctx context.Context, jobID int64) ([]models.Bid, error) {
	resp, err := b.api.Do(ctx, operation.Request{Op: operation.ListBids, JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("list bids of job %d: %w", jobID, err)
	}
	return decodeList[models.Bid](resp)
}

// Place submits a bid. Nothing stops a traveler bidding twice; callers check
// FindUserBid first.
func (b *Bids) Place(ctx context.Context, form validation.BidForm) (models.Bid, error) {
	if err := b.validate.Struct(form); err != nil {
		return models.Bid{}, err
	}

	resp, err := b.api.Do(ctx, operation.Request{Op: operation.CreateBid, Body: form.Input()})
	if err != nil {
		return models.Bid{}, fmt.Errorf("place bid on job %d: %w", form.Job, err)
	}

	var bid models.Bid
	if err := resp.Decode(&bid); err != nil {
		return models.Bid{}, fmt.Errorf("place bid on job %d: %w", form.Job, err)
	}
	utils.Info("marketplace: bid placed", map[string]any{"job_id": form.Job, "bid_id": bid.ID, "amount": bid.Amount})
	return bid, nil
}

// FindUserBid returns the bid user already placed, matched by username or id
func FindUserBid(bids []models.Bid, user models.User) (models.Bid, bool) {
	for _, bid := range bids {
		switch {
		case user.Username != "" && bid.TravelerUsername == user.Username,
			user.ID != 0 && bid.Traveler == user.ID,
			user.ID != 0 && bid.TravelerID == user.ID:
			return bid, true
		}
	}
	return models.Bid{}, false
}
