package model

import "fmt"

// QuotaExceededError reports an upload that would push a user's stored bytes past the limit.
// It is not retryable until the user frees space.
type QuotaExceededError struct {
	Current   int64 `json:"current"`
	Limit     int64 `json:"limit"`
	Attempted int64 `json:"attempted"`
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: current %d + attempted %d > limit %d", e.Current, e.Attempted, e.Limit)
}
