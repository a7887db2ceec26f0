// Package domain contains the marketplace entities: users, quote requests,
// offers, payments and reviews, together with their status machines and the
// error kinds every lifecycle operation reports.
package domain
