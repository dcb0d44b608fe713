package engine

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// Named error kinds. Each wraps one of errdefs' classified
// sentinels so callers can branch with errdefs.Is{NotFound,InvalidArgument,
// AlreadyExists} without string-matching reasons, while the message text
// still names the kind for logging.
var (
	ErrUnknownBlock      = fmt.Errorf("%w: unknown block type", errdefs.ErrNotFound)
	ErrBlockNotFound     = fmt.Errorf("%w: block not found", errdefs.ErrNotFound)
	ErrInputNotFound     = fmt.Errorf("%w: input pin not found", errdefs.ErrNotFound)
	ErrOutputNotFound    = fmt.Errorf("%w: output pin not found", errdefs.ErrNotFound)
	ErrSourcePinNotFound = fmt.Errorf("%w: source pin not found", errdefs.ErrNotFound)
	ErrInvalidUUID       = fmt.Errorf("%w: invalid uuid", errdefs.ErrInvalidArgument)
	ErrDuplicateLink     = fmt.Errorf("%w: duplicate link", errdefs.ErrAlreadyExists)
	ErrSelfConnection    = fmt.Errorf("%w: self connection", errdefs.ErrInvalidArgument)
	ErrInvalidRequest    = fmt.Errorf("%w: invalid request", errdefs.ErrInvalidArgument)
)

// wrap names an errdefs-classified sentinel with request-specific detail
// while keeping errors.Is(err, sentinel) true.
func wrap(sentinel error, detail string) error {
	return fmt.Errorf("%w: %s", sentinel, detail)
}
