package errors

import "fmt"

var (
	ErrQueryTooShort = fmt.Errorf("search query too short")
	ErrQueryTooLong  = fmt.Errorf("search query too long")
	ErrQueryInvalid  = fmt.Errorf("search query invalid")

	ErrCredential   = fmt.Errorf("credential exchange failed")
	ErrTrackSearch  = fmt.Errorf("track search failed")
	ErrTrackFetch   = fmt.Errorf("track fetch failed")
	ErrWrite        = fmt.Errorf("message write failed")
	ErrSearchFailed = fmt.Errorf("message search failed")

	ErrInvalidMessage = fmt.Errorf("invalid message")
)
