package memory

import (
	"slices"
	"time"

	"github.com/teolgogo/quote-engine/internal/domain"
)

// Stored values are never handed out or mutated in place: reads return
// copies and writes store copies.

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneLocation(l *domain.Location) *domain.Location {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Password = ""
	c.Location = cloneLocation(u.Location)
	return &c
}

func cloneRequest(r *domain.QuoteRequest) *domain.QuoteRequest {
	c := *r
	c.Location = cloneLocation(r.Location)
	c.PreferredDate = cloneTime(r.PreferredDate)
	c.Items = slices.Clone(r.Items)
	c.PhotoRefs = slices.Clone(r.PhotoRefs)
	return &c
}

func cloneResponse(o *domain.QuoteResponse) *domain.QuoteResponse {
	c := *o
	c.AvailableDate = cloneTime(o.AvailableDate)
	c.BeforePhotoRefs = slices.Clone(o.BeforePhotoRefs)
	c.AfterPhotoRefs = slices.Clone(o.AfterPhotoRefs)
	return &c
}

func clonePayment(p *domain.Payment) *domain.Payment {
	c := *p
	c.PaidAt = cloneTime(p.PaidAt)
	c.CanceledAt = cloneTime(p.CanceledAt)
	return &c
}

func cloneReview(r *domain.Review) *domain.Review {
	c := *r
	if r.QuoteResponseID != nil {
		id := *r.QuoteResponseID
		c.QuoteResponseID = &id
	}
	c.Tags = slices.Clone(r.Tags)
	return &c
}

// newestFirst orders by CreatedAt descending.
func newestFirst(a, b time.Time) int {
	return b.Compare(a)
}
