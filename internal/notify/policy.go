package notify

import "stockwatch/internal/model"

// ShouldNotify decides whether a completed check warrants a notification.
//
// A first observation (prev empty) always counts as a change. Recipient
// selection and empty-recipient suppression are a separate, per-channel
// concern handled by Service.Dispatch.
func ShouldNotify(prev, cur model.StockState, notifyOnSameState bool) bool {
	return notifyOnSameState || prev != cur
}
