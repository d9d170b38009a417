package enums

import "fmt"

// NotificationKind labels the transient notices surfaced to the client.
type NotificationKind string

const (
	NotificationStockLimit       NotificationKind = "stock_limit"
	NotificationAuthRequired     NotificationKind = "auth_required"
	NotificationAccessDenied     NotificationKind = "access_denied"
	NotificationPaymentCompleted NotificationKind = "payment_completed"
	NotificationPaymentCancelled NotificationKind = "payment_cancelled"
	NotificationRemoteDegraded   NotificationKind = "remote_degraded"
)

var validNotificationKinds = []NotificationKind{
	NotificationStockLimit,
	NotificationAuthRequired,
	NotificationAccessDenied,
	NotificationPaymentCompleted,
	NotificationPaymentCancelled,
	NotificationRemoteDegraded,
}

// String implements fmt.Stringer.
func (k NotificationKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known NotificationKind.
func (k NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw input into a NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
