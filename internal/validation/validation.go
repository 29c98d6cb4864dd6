package validation

import (
	"delivery-marketplace/internal/marketerrors"
	"delivery-marketplace/internal/models"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// LoginForm is the sign-in form
type LoginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the sign-up form. Traveler-only fields are optional.
type RegisterForm struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	Role            string `json:"role" validate:"required,oneof=sender traveler traveller"`
	Phone           string `json:"phone" validate:"omitempty,max=20"`
	Address         string `json:"address"`
	Bio             string `json:"bio"`
	VehicleType     string `json:"vehicle_type"`
	LicenseNumber   string `json:"license_number"`
	ExperienceYears int    `json:"experience_years" validate:"gte=0"`
}

// Input converts the form into the registration payload
func (f RegisterForm) Input() models.RegisterInput {
	return models.RegisterInput{
		Username:        strings.TrimSpace(f.Username),
		Email:           strings.TrimSpace(f.Email),
		Password:        f.Password,
		Role:            models.NormalizeRole(f.Role),
		Phone:           f.Phone,
		Address:         f.Address,
		Bio:             f.Bio,
		VehicleType:     f.VehicleType,
		LicenseNumber:   f.LicenseNumber,
		ExperienceYears: f.ExperienceYears,
	}
}

// JobForm is the post-a-job form
type JobForm struct {
	GoodsName      string    `json:"goods_name" validate:"required"`
	PickupLocation string    `json:"pickup_location" validate:"required"`
	DropLocation   string    `json:"drop_location" validate:"required"`
	DeliveryTime   time.Time `json:"delivery_time" validate:"required,future"`
}

// Input converts the form into the job payload, delivery time in UTC
func (f JobForm) Input() models.JobInput {
	return models.JobInput{
		GoodsName:      f.GoodsName,
		PickupLocation: f.PickupLocation,
		DropLocation:   f.DropLocation,
		DeliveryTime:   f.DeliveryTime.UTC(),
	}
}

// BidForm is the place-a-bid form
type BidForm struct {
	Job     int64   `json:"job" validate:"required,gt=0"`
	Amount  float64 `json:"amount" validate:"gt=0"`
	Message string  `json:"message" validate:"required"`
}

// Input converts the form into the bid payload
func (f BidForm) Input() models.BidInput {
	return models.BidInput{Job: f.Job, Amount: f.Amount, Message: f.Message}
}

// MessageForm is the chat composer
type MessageForm struct {
	Job  int64  `json:"job" validate:"required,gt=0"`
	Text string `json:"text" validate:"required"`
}

// Error lists the rejected fields of a form, keyed by their JSON name
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("%v: %s", marketerrors.ErrValidation, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error { return marketerrors.ErrValidation }

// Validator checks forms before anything is sent to a backend
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New creates a Validator; now is the clock used by the "future" rule
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{
		validate: validator.New(),
		now:      now,
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// registration cannot fail for a non-empty tag and func
	_ = v.validate.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(v.now())
	})
	return v
}

// Struct validates a form. Rule violations come back as *Error.
func (v *Validator) Struct(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %T: %w", form, err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = Describe(fe)
	}
	return &Error{Fields: fields}
}

// Describe renders one field failure the way the marketplace API words them
func Describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "future":
		return "Must be in the future."
	default:
		return fmt.Sprintf("Failed the %q rule.", fe.Tag())
	}
}
