package transfer

import "errors"

// Validation failures describe the caller's own request and are safe to
// return verbatim. Callback authentication failures are deliberately opaque:
// the web layer turns ErrCallbackAuthFailed into the same not-found response
// an unknown transfer would get, so a caller cannot distinguish a bad token
// from a bad identifier.
var (
	ErrMissingField           = errors.New("request payload missing a required field")
	ErrOwnershipViolation     = errors.New("cannot assign ownership of a transfer to someone else")
	ErrInvalidDestinationName = errors.New("destination name must encode to between 1 and 1024 bytes")

	ErrUnauthorizedOrInactiveResource = errors.New("one or more requested resources cannot be transferred")
	ErrNoTransferableItems            = errors.New("no transferable items in request")
	ErrAlreadyInProgress              = errors.New("transfer already in progress")

	ErrUnsupportedCombination = errors.New("no implementation for environment and provider combination")

	ErrCallbackAuthFailed = errors.New("callback authentication failed")
	ErrMalformedCallback  = errors.New("callback payload missing required fields")
	ErrUnknownTransfer    = errors.New("no such transfer")
	ErrUnknownCoordinator = errors.New("no such transfer coordinator")
	ErrAlreadyCompleted   = errors.New("transfer already completed")

	ErrProviderLaunchFailed = errors.New("worker launch failed")
)
