package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email        string   `json:"email"         validate:"required,email"`
	Password     string   `json:"password"      validate:"required,min=8,max=72"`
	Name         string   `json:"name"          validate:"required,max=100"`
	Role         string   `json:"role"          validate:"required,oneof=CUSTOMER BUSINESS"`
	Phone        string   `json:"phone"         validate:"omitempty,max=30"`
	BusinessName string   `json:"business_name" validate:"required_if=Role BUSINESS,max=100"`
	Address      string   `json:"address"       validate:"max=255"`
	Latitude     *float64 `json:"latitude"      validate:"required_with=Longitude,omitempty,latitude"`
	Longitude    *float64 `json:"longitude"     validate:"required_with=Latitude,omitempty,longitude"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	User         *domain.User `json:"user,omitempty"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	// ExpiresAt is the RFC 3339 expiry of the access token.
	ExpiresAt string `json:"expires_at"`
}

// LocationRequest updates the caller's location.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Address   string   `json:"address"   validate:"max=255"`
}

// PetRequest describes the pet of a new quote request.
type PetRequest struct {
	Type   string  `json:"type"   validate:"required"`
	Breed  string  `json:"breed"  validate:"max=100"`
	Age    int     `json:"age"    validate:"gte=0"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

// QuoteItemRequest is one requested service sub-item.
type QuoteItemRequest struct {
	Type        string `json:"type"        validate:"required"`
	Description string `json:"description" validate:"max=500"`
	Price       int64  `json:"price"       validate:"gte=0"`
}

// CreateQuoteRequest defines the payload for posting a quote request.
type CreateQuoteRequest struct {
	Pet           PetRequest         `json:"pet"`
	ServiceType   string             `json:"service_type"   validate:"required"`
	Description   string             `json:"description"    validate:"max=2000"`
	Latitude      *float64           `json:"latitude"       validate:"required_with=Longitude,omitempty,latitude"`
	Longitude     *float64           `json:"longitude"      validate:"required_with=Latitude,omitempty,longitude"`
	Address       string             `json:"address"        validate:"max=255"`
	PreferredDate *time.Time         `json:"preferred_date"`
	Items         []QuoteItemRequest `json:"items"          validate:"dive"`
	PhotoRefs     []string           `json:"photo_refs"     validate:"max=10,dive,required"`
}

// Attrs converts the payload into domain attributes.
func (c CreateQuoteRequest) Attrs() domain.QuoteRequestAttrs {
	attrs := domain.QuoteRequestAttrs{
		Pet: domain.Pet{
			Type:   domain.PetType(c.Pet.Type),
			Breed:  c.Pet.Breed,
			Age:    c.Pet.Age,
			Weight: c.Pet.Weight,
		},
		ServiceType:   domain.ServiceType(c.ServiceType),
		Description:   c.Description,
		Location:      toLocation(c.Latitude, c.Longitude),
		Address:       c.Address,
		PreferredDate: c.PreferredDate,
		PhotoRefs:     c.PhotoRefs,
	}
	for _, item := range c.Items {
		attrs.Items = append(attrs.Items, domain.QuoteItem{
			Type:        domain.ItemType(item.Type),
			Description: item.Description,
			Price:       item.Price,
		})
	}
	return attrs
}

// SubmitOfferRequest defines the payload for a business's offer.
type SubmitOfferRequest struct {
	Price         int64      `json:"price"          validate:"required,gt=0"`
	Description   string     `json:"description"    validate:"max=2000"`
	EstimatedTime string     `json:"estimated_time" validate:"max=100"`
	AvailableDate *time.Time `json:"available_date"`
}

// Attrs converts the payload into domain attributes.
func (s SubmitOfferRequest) Attrs() domain.OfferAttrs {
	return domain.OfferAttrs{
		Price:         s.Price,
		Description:   s.Description,
		EstimatedTime: s.EstimatedTime,
		AvailableDate: s.AvailableDate,
	}
}

// CompleteOfferRequest carries the grooming photo references.
type CompleteOfferRequest struct {
	BeforePhotoRefs []string `json:"before_photo_refs" validate:"max=10"`
	AfterPhotoRefs  []string `json:"after_photo_refs"  validate:"max=10"`
}

// PreparePaymentRequest opens checkout for an offer.
type PreparePaymentRequest struct {
	QuoteResponseID uuid.UUID `json:"quote_response_id" validate:"required"`
	Method          string    `json:"method"            validate:"required"`
}

// ConfirmPaymentRequest relays the gateway's success redirect parameters.
type ConfirmPaymentRequest struct {
	PaymentKey string `json:"payment_key" validate:"required"`
	OrderID    string `json:"order_id"    validate:"required"`
	Amount     int64  `json:"amount"      validate:"required,gt=0"`
}

// CancelPaymentRequest refunds a DONE payment.
type CancelPaymentRequest struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

// CreateReviewRequest reviews a paid offer.
type CreateReviewRequest struct {
	QuoteResponseID uuid.UUID `json:"quote_response_id" validate:"required"`
	Rating          int       `json:"rating"            validate:"required"`
	Content         string    `json:"content"           validate:"max=2000"`
	Tags            []string  `json:"tags"              validate:"max=10"`
}

// UpdateReviewRequest edits a review. Absent fields are left unchanged.
type UpdateReviewRequest struct {
	Rating  *int     `json:"rating"`
	Content *string  `json:"content" validate:"omitempty,max=2000"`
	Tags    []string `json:"tags"    validate:"omitempty,max=10"`
	Public  *bool    `json:"public"`
}

func toLocation(lat, lng *float64) *domain.Location {
	if lat == nil || lng == nil {
		return nil
	}
	return &domain.Location{Latitude: *lat, Longitude: *lng}
}
