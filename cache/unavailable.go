package cache

import "context"

// unavailableStore stands in for a store that could not be constructed.
type unavailableStore struct {
	cause error
}

// Unavailable returns a Store whose every operation fails with an error
// wrapping ErrUnavailable and cause. Callers use it when the backend could not
// be reached at startup so that store consumers take their fallback path.
func Unavailable(cause error) Store {
	if cause == nil {
		cause = ErrUnavailable
	}
	return &unavailableStore{cause: cause}
}

func (s *unavailableStore) Get(_ context.Context, name string) (string, error) {
	return "", NewOperationError("get", name, ErrUnavailable, s.cause)
}

func (s *unavailableStore) Set(_ context.Context, name, _ string) error {
	return NewOperationError("set", name, ErrUnavailable, s.cause)
}

func (s *unavailableStore) Health(context.Context) error {
	return NewOperationError("ping", "", ErrUnavailable, s.cause)
}
