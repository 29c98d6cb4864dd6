package mockbackend

import (
	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/repository"
	"fmt"
	"time"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Seed fills repo with the development fixtures: one sender, one traveler,
// two jobs, a bid and a short conversation. Ids continue after the fixtures.
func Seed(repo repository.MarketDB) error {
	users := []models.User{
		{
			Username: "sender1",
			Email:    "sender@example.com",
			Role:     models.RoleSender,
			Phone:    "+1234567890",
			Address:  "123 Main St",
		},
		{
			Username:        "traveler1",
			Email:           "traveler@example.com",
			Role:            models.RoleTraveler,
			Phone:           "+0987654321",
			Address:         "456 Oak Ave",
			VehicleType:     "Car",
			LicenseNumber:   "ABC123",
			ExperienceYears: 3,
		},
	}
	for i, u := range users {
		created, err := repo.CreateUser(u)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		users[i] = created
	}
	sender, traveler := users[0], users[1]

	jobs := []models.Job{
		{
			GoodsName:      "Electronics Package",
			PickupLocation: "123 Tech Street, San Francisco, CA",
			DropLocation:   "456 Innovation Ave, San Jose, CA",
			DeliveryTime:   mustTime("2024-12-25T14:00:00Z"),
			Sender:         sender.ID,
			CreatedAt:      mustTime("2024-01-15T10:00:00Z"),
		},
		{
			GoodsName:      "Documents",
			PickupLocation: "789 Business Blvd, Oakland, CA",
			DropLocation:   "321 Corporate Dr, Fremont, CA",
			DeliveryTime:   mustTime("2024-12-26T09:00:00Z"),
			Sender:         sender.ID,
			CreatedAt:      mustTime("2024-01-16T11:00:00Z"),
		},
	}
	for i, j := range jobs {
		created, err := repo.CreateJob(j)
		if err != nil {
			return fmt.Errorf("seed job %s: %w", j.GoodsName, err)
		}
		jobs[i] = created
	}

	if _, err := repo.CreateBid(models.Bid{
		Job:              jobs[0].ID,
		Traveler:         traveler.ID,
		TravelerUsername: traveler.Username,
		Amount:           25.00,
		Message:          "I can deliver this safely and on time!",
		Status:           models.BidStatusPending,
		CreatedAt:        mustTime("2024-01-15T12:00:00Z"),
	}); err != nil {
		return fmt.Errorf("seed bid: %w", err)
	}

	messages := []models.Message{
		{
			Job:            jobs[0].ID,
			Sender:         sender.ID,
			SenderUsername: sender.Username,
			Text:           "Hi, when can you pick up the package?",
			Timestamp:      mustTime("2024-01-15T13:00:00Z"),
		},
		{
			Job:            jobs[0].ID,
			Sender:         traveler.ID,
			SenderUsername: traveler.Username,
			Text:           "I can pick it up tomorrow morning around 10 AM.",
			Timestamp:      mustTime("2024-01-15T13:05:00Z"),
		},
	}
	for _, m := range messages {
		if _, err := repo.CreateMessage(m); err != nil {
			return fmt.Errorf("seed message: %w", err)
		}
	}

	return nil
}
