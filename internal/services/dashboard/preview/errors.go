package preview

import "errors"

var (
	ErrMissingURL = errors.New("missing url parameter")

	ErrInvalidFormat      = errors.New("invalid format")
	ErrProtocolNotAllowed = errors.New("protocol not allowed")
	ErrDomainNotAllowed   = errors.New("domain not allowed")
	ErrLocalhostBlocked   = errors.New("localhost blocked")
	ErrPrivateIPBlocked   = errors.New("private IP blocked")
	ErrPrivateIPv6Blocked = errors.New("private IPv6 blocked")

	ErrInvalidRedirectTarget  = errors.New("invalid redirect location")
	ErrRedirectBudgetExceeded = errors.New("too many redirects")
	ErrNoResponse             = errors.New("no response received")
)

var rejections = []error{
	ErrInvalidFormat,
	ErrProtocolNotAllowed,
	ErrDomainNotAllowed,
	ErrLocalhostBlocked,
	ErrPrivateIPBlocked,
	ErrPrivateIPv6Blocked,
}

// IsRejection reports whether err is a URL validation failure.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
