package registry

import (
	"errors"
	"fmt"
)

// UnboundResolverError indicates a source_ontology key used by a query
// has no configured binding and no default binding exists.
type UnboundResolverError struct {
	// Key is the source_ontology value that failed to resolve.
	Key string
}

func (e *UnboundResolverError) Error() string {
	if e.Key == "" {
		return "no resolver bound and no default resolver configured"
	}
	return fmt.Sprintf("no resolver bound for %q and no default resolver configured", e.Key)
}

// IsUnbound returns true if the error is a resolver configuration gap.
func IsUnbound(err error) bool {
	var unbound *UnboundResolverError
	return errors.As(err, &unbound)
}
