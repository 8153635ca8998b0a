package fallcache

import (
	"fmt"
)

// RemoteError normalizes every source failure (connectivity, status,
// deserialization) into a single "remote unavailable" kind before it
// reaches the merge policy.
type RemoteError struct {
	Cause error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("fallcache: remote fetch failed: %v", e.Cause)
}

func (e *RemoteError) Unwrap() error { return e.Cause }

// NoDataError is the only failure a Load/Fetch caller observes: the
// remote is unavailable and the cache holds nothing. Remote is the
// *RemoteError that triggered the fallback.
type NoDataError struct {
	Remote error
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("fallcache: no data available: %v", e.Remote)
}

func (e *NoDataError) Unwrap() error { return e.Remote }

// ClearError reports a Clear call where both the revision bump and the
// snapshot delete failed. Either alone still clears: a bumped revision
// stales the stored snapshot, and a deleted snapshot reads as empty.
type ClearError struct {
	Namespace string
	BumpErr   error
	DelErr    error
}

func (e *ClearError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("clear %q failed: revision bump and delete failed: bump=%v; delete=%v",
			e.Namespace, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("clear %q: revision bump failed: %v", e.Namespace, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("clear %q: delete failed: %v", e.Namespace, e.DelErr)
	default:
		return fmt.Sprintf("clear %q: unknown error", e.Namespace)
	}
}

func (e *ClearError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
