package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PetType is the kind of animal to be groomed.
type PetType string

// Pet types
const (
	PetTypeDog   PetType = "DOG"
	PetTypeCat   PetType = "CAT"
	PetTypeOther PetType = "OTHER"
)

// ServiceType is the grooming package requested.
type ServiceType string

// Service types
const (
	ServiceTypeBasic   ServiceType = "BASIC"
	ServiceTypeSpecial ServiceType = "SPECIAL"
	ServiceTypeBath    ServiceType = "BATH"
	ServiceTypeStyling ServiceType = "STYLING"
)

var serviceTypeNames = map[ServiceType]string{
	ServiceTypeBasic:   "기본 미용",
	ServiceTypeSpecial: "특수 미용",
	ServiceTypeBath:    "목욕",
	ServiceTypeStyling: "스타일링",
}

// DisplayName returns the customer facing name of the service type.
func (s ServiceType) DisplayName() string {
	return serviceTypeNames[s]
}

// RequestStatus is the lifecycle status of a quote request.
type RequestStatus string

// Request statuses
const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusOffered   RequestStatus = "OFFERED"
	RequestStatusAccepted  RequestStatus = "ACCEPTED"
	RequestStatusCompleted RequestStatus = "COMPLETED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

// requestTransitions lists the forward edges of the request state machine.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:  {RequestStatusOffered, RequestStatusCancelled},
	RequestStatusOffered:  {RequestStatusAccepted, RequestStatusCancelled},
	RequestStatusAccepted: {RequestStatusCompleted},
}

// CanTransitionTo reports whether the request state machine has an edge
// from s to next. Terminal statuses have no outgoing edges.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Open reports whether offers may still be accepted or the request cancelled.
func (s RequestStatus) Open() bool {
	return s == RequestStatusPending || s == RequestStatusOffered
}

// ReviewStatus records whether the completed request has been reviewed.
type ReviewStatus string

// Review statuses
const (
	ReviewStatusNotReviewed ReviewStatus = "NOT_REVIEWED"
	ReviewStatusReviewed    ReviewStatus = "REVIEWED"
)

// ItemType classifies a requested service sub-item.
type ItemType string

// Line item types
const (
	ItemTypeBasicGrooming ItemType = "BASIC_GROOMING"
	ItemTypeSpecialCare   ItemType = "SPECIAL_CARE"
	ItemTypeBath          ItemType = "BATH"
	ItemTypeNailTrim      ItemType = "NAIL_TRIM"
	ItemTypeEarCleaning   ItemType = "EAR_CLEANING"
	ItemTypeTeethBrushing ItemType = "TEETH_BRUSHING"
	ItemTypeStyling       ItemType = "STYLING"
	ItemTypeDeshedding    ItemType = "DESHEDDING"
	ItemTypeFleaTreatment ItemType = "FLEA_TREATMENT"
	ItemTypeCustom        ItemType = "CUSTOM"
)

func isValidItemType(t ItemType) bool {
	switch t {
	case ItemTypeBasicGrooming, ItemTypeSpecialCare, ItemTypeBath, ItemTypeNailTrim,
		ItemTypeEarCleaning, ItemTypeTeethBrushing, ItemTypeStyling, ItemTypeDeshedding,
		ItemTypeFleaTreatment, ItemTypeCustom:
		return true
	}
	return false
}

// Quote request validation errors
var (
	ErrEmptyCustomerID     = errors.New("customer ID cannot be empty")
	ErrInvalidPetType      = errors.New("invalid pet type")
	ErrInvalidServiceType  = errors.New("invalid service type")
	ErrInvalidItemType     = errors.New("invalid item type")
	ErrNegativeItemPrice   = errors.New("item price cannot be negative")
	ErrInvalidPetWeight    = errors.New("pet weight cannot be negative")
	ErrInvalidPetAge       = errors.New("pet age cannot be negative")
	ErrInvalidRequestState = errors.New("invalid request status")
)

// Pet describes the animal a quote is requested for.
type Pet struct {
	Type   PetType `json:"type"`
	Breed  string  `json:"breed,omitempty"`
	Age    int     `json:"age"`
	Weight float64 `json:"weight"`
}

// QuoteItem is an ordered service sub-item of a request.
type QuoteItem struct {
	ID          uuid.UUID `json:"id"`
	Position    int       `json:"position"`
	Type        ItemType  `json:"type"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
}

// QuoteRequest is a customer's posted grooming job.
type QuoteRequest struct {
	ID            uuid.UUID     `json:"id"`
	CustomerID    uuid.UUID     `json:"customer_id"`
	Pet           Pet           `json:"pet"`
	ServiceType   ServiceType   `json:"service_type"`
	Description   string        `json:"description,omitempty"`
	Location      *Location     `json:"location,omitempty"`
	Address       string        `json:"address,omitempty"`
	Status        RequestStatus `json:"status"`
	ReviewStatus  ReviewStatus  `json:"review_status"`
	PreferredDate *time.Time    `json:"preferred_date,omitempty"`
	Items         []QuoteItem   `json:"items"`
	PhotoRefs     []string      `json:"photo_refs,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// QuoteRequestAttrs are the customer supplied fields of a new request.
type QuoteRequestAttrs struct {
	Pet           Pet
	ServiceType   ServiceType
	Description   string
	Location      *Location
	Address       string
	PreferredDate *time.Time
	Items         []QuoteItem
	PhotoRefs     []string
}

// NewQuoteRequest creates a PENDING, NOT_REVIEWED request owned by customerID.
// Line items are assigned ids and positions in the order given.
func NewQuoteRequest(customerID uuid.UUID, attrs QuoteRequestAttrs) (*QuoteRequest, error) {
	now := time.Now().UTC()
	req := &QuoteRequest{
		ID:            uuid.New(),
		CustomerID:    customerID,
		Pet:           attrs.Pet,
		ServiceType:   attrs.ServiceType,
		Description:   strings.TrimSpace(attrs.Description),
		Location:      attrs.Location,
		Address:       attrs.Address,
		Status:        RequestStatusPending,
		ReviewStatus:  ReviewStatusNotReviewed,
		PreferredDate: attrs.PreferredDate,
		Items:         make([]QuoteItem, 0, len(attrs.Items)),
		PhotoRefs:     attrs.PhotoRefs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for i, item := range attrs.Items {
		item.ID = uuid.New()
		item.Position = i
		req.Items = append(req.Items, item)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks if the QuoteRequest has valid data.
func (r *QuoteRequest) Validate() error {
	if r.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if r.CustomerID == uuid.Nil {
		return NewValidationError("customer_id", "cannot be empty", ErrEmptyCustomerID)
	}

	switch r.Pet.Type {
	case PetTypeDog, PetTypeCat, PetTypeOther:
	default:
		return NewValidationError("pet.type", "is not supported", ErrInvalidPetType)
	}
	if r.Pet.Age < 0 {
		return NewValidationError("pet.age", "cannot be negative", ErrInvalidPetAge)
	}
	if r.Pet.Weight < 0 {
		return NewValidationError("pet.weight", "cannot be negative", ErrInvalidPetWeight)
	}

	if _, ok := serviceTypeNames[r.ServiceType]; !ok {
		return NewValidationError("service_type", "is not supported", ErrInvalidServiceType)
	}

	if r.Location != nil {
		if err := r.Location.Validate(); err != nil {
			return err
		}
	}

	switch r.Status {
	case RequestStatusPending, RequestStatusOffered, RequestStatusAccepted,
		RequestStatusCompleted, RequestStatusCancelled:
	default:
		return NewValidationError("status", "is not supported", ErrInvalidRequestState)
	}

	for _, item := range r.Items {
		if !isValidItemType(item.Type) {
			return NewValidationError("items.type", "is not supported", ErrInvalidItemType)
		}
		if item.Price < 0 {
			return NewValidationError("items.price", "cannot be negative", ErrNegativeItemPrice)
		}
	}

	return nil
}

// TransitionTo moves the request to next, refusing any edge the state
// machine does not define.
func (r *QuoteRequest) TransitionTo(next RequestStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return ErrInvalidState
	}
	r.Status = next
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// EstimatedTotal sums the line item prices.
func (r *QuoteRequest) EstimatedTotal() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.Price
	}
	return total
}

// Participants returns the request's fixed customer and the given business.
func (r *QuoteRequest) Participants(businessID uuid.UUID) Participants {
	return Participants{CustomerID: r.CustomerID, BusinessID: businessID}
}
