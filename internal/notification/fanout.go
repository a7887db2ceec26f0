// Package notification derives who is told about each lifecycle transition
// and hands the resulting messages to a delivery sink in the background.
package notification

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/domain/geo"
	"github.com/teolgogo/quote-engine/internal/events"
)

// Deep link builders
func requestLink(requestID uuid.UUID) string {
	return "/quotes/" + requestID.String()
}

func offerLink(requestID, offerID uuid.UUID) string {
	return fmt.Sprintf("/quotes/%s/offers/%s", requestID, offerID)
}

func reviewPromptLink(offerID uuid.UUID) string {
	return "/reviews/new?offer=" + offerID.String()
}

func businessReviewsLink(businessID uuid.UUID) string {
	return fmt.Sprintf("/businesses/%s/reviews", businessID)
}

// formatWon renders an amount with thousands separators.
func formatWon(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := false
	if amount < 0 {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// ForRequestCreated notifies every business within radiusKm of the request.
// A request without coordinates reaches nobody.
func ForRequestCreated(p events.RequestCreated, businesses []*domain.User, radiusKm float64) []domain.Notification {
	if p.Location == nil {
		return nil
	}

	nearby := geo.WithinRadius(*p.Location, radiusKm, businesses, func(u *domain.User) *domain.Location {
		return u.Location
	})

	km := strconv.FormatFloat(radiusKm, 'f', -1, 64)
	out := make([]domain.Notification, 0, len(nearby))
	for _, m := range nearby {
		if m.Item.ID == p.CustomerID {
			continue
		}
		out = append(out, domain.Notification{
			RecipientID: m.Item.ID,
			Title:       "새로운 견적 요청",
			Body:        fmt.Sprintf("반경 %skm 내에 %s 서비스 요청이 있습니다.", km, p.ServiceType.DisplayName()),
			Link:        requestLink(p.RequestID),
		})
	}
	return out
}

// ForOfferSubmitted notifies the request's customer.
func ForOfferSubmitted(p events.OfferSubmitted) []domain.Notification {
	recipient, ok := domain.Counterpart(domain.RoleBusiness, domain.Participants{CustomerID: p.CustomerID, BusinessID: p.BusinessID})
	if !ok {
		return nil
	}
	return []domain.Notification{{
		RecipientID: recipient,
		Title:       "새로운 견적 제안",
		Body:        fmt.Sprintf("%s 업체에서 %s원의 견적을 제안했습니다.", p.BusinessName, formatWon(p.Price)),
		Link:        offerLink(p.RequestID, p.OfferID),
	}}
}

// ForOfferAccepted notifies the offer's business.
func ForOfferAccepted(p events.OfferAccepted) []domain.Notification {
	recipient, ok := domain.Counterpart(domain.RoleCustomer, domain.Participants{CustomerID: p.CustomerID, BusinessID: p.BusinessID})
	if !ok {
		return nil
	}
	return []domain.Notification{{
		RecipientID: recipient,
		Title:       "견적 수락 알림",
		Body:        fmt.Sprintf("%s 고객님이 %s원의 견적을 수락했습니다.", p.CustomerName, formatWon(p.Price)),
		Link:        offerLink(p.RequestID, p.OfferID),
	}}
}

// ForCompletionUploaded prompts the customer for a review.
func ForCompletionUploaded(p events.CompletionUploaded) []domain.Notification {
	recipient, ok := domain.Counterpart(domain.RoleBusiness, domain.Participants{CustomerID: p.CustomerID, BusinessID: p.BusinessID})
	if !ok {
		return nil
	}
	return []domain.Notification{{
		RecipientID: recipient,
		Title:       "미용 완료 알림",
		Body:        fmt.Sprintf("%s 업체의 미용 서비스가 완료되었습니다. 리뷰를 작성해주세요.", p.BusinessName),
		Link:        reviewPromptLink(p.OfferID),
	}}
}

// ForReviewCreated notifies the reviewed business.
func ForReviewCreated(p events.ReviewCreated) []domain.Notification {
	recipient, ok := domain.Counterpart(domain.RoleCustomer, domain.Participants{CustomerID: p.CustomerID, BusinessID: p.BusinessID})
	if !ok {
		return nil
	}
	return []domain.Notification{{
		RecipientID: recipient,
		Title:       "새로운 리뷰 알림",
		Body:        fmt.Sprintf("%s 고객님이 %d점의 리뷰를 남겼습니다.", p.CustomerName, p.Rating),
		Link:        businessReviewsLink(p.BusinessID),
	}}
}
