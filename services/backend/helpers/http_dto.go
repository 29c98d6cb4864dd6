package helpers

import (
	model "delivery-marketplace/internal/models"
	"time"
)

// Request DTOs
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required,max=150"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	Role            string `json:"role" binding:"required,oneof=sender traveler traveller"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Bio             string `json:"bio"`
	VehicleType     string `json:"vehicle_type"`
	LicenseNumber   string `json:"license_number"`
	ExperienceYears int    `json:"experience_years" binding:"gte=0"`
}

// Input converts the request into the registration payload
func (r RegisterRequest) Input() model.RegisterInput {
	return model.RegisterInput{
		Username:        r.Username,
		Email:           r.Email,
		Password:        r.Password,
		Role:            model.NormalizeRole(r.Role),
		Phone:           r.Phone,
		Address:         r.Address,
		Bio:             r.Bio,
		VehicleType:     r.VehicleType,
		LicenseNumber:   r.LicenseNumber,
		ExperienceYears: r.ExperienceYears,
	}
}

type JobRequest struct {
	GoodsName      string    `json:"goods_name" binding:"required"`
	PickupLocation string    `json:"pickup_location" binding:"required"`
	DropLocation   string    `json:"drop_location" binding:"required"`
	DeliveryTime   time.Time `json:"delivery_time" binding:"required"`
}

type BidRequest struct {
	Job     int64   `json:"job" binding:"required,gt=0"`
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	Message string  `json:"message"`
}

type MessageRequest struct {
	Job  int64  `json:"job" binding:"required,gt=0"`
	Text string `json:"text" binding:"required"`
}

// Response DTOs
type LoginResponse struct {
	Access string     `json:"access"`
	Token  string     `json:"token"`
	User   model.User `json:"user"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
