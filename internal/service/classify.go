package service

import (
	"strings"

	"storefront/internal/domain"
)

// Classify derives the simulated transaction outcome from the card number:
// a leading 2 is declined by the bank, a leading 3 is a gateway failure and
// anything else, including an empty number, is approved.
func Classify(cardNumber string) domain.OrderStatus {
	switch {
	case strings.HasPrefix(cardNumber, "2"):
		return domain.OrderStatusDeclined
	case strings.HasPrefix(cardNumber, "3"):
		return domain.OrderStatusFailed
	default:
		return domain.OrderStatusApproved
	}
}
