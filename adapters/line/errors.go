package line

import (
	"fmt"

	"github.com/prebid/prebid-mediation/errortypes"
	"github.com/prebid/prebid-mediation/fivead"
	"github.com/prebid/prebid-mediation/mediation"
)

// Adapter error codes. They live in ErrorDomain and start above the FiveAd SDK's own
// codes so hosts never confuse the two.
const (
	ErrorCodeMissingAppID          = 101
	ErrorCodeMissingSlotID         = 102
	ErrorCodeMismatchAdSize        = 103
	ErrorCodeInvalidAdSize         = 104
	ErrorCodeInitializationFailure = 105
)

const (
	errorMsgMissingAppID  = "Missing or invalid Application ID configured for this ad source instance in the mediation UI."
	errorMsgMissingSlotID = "Missing or invalid Slot ID configured for this ad source instance in the mediation UI."
	errorMsgMismatchSize  = "Unexpected ad size loaded."
)

func newConfigurationError(code int, message string) *errortypes.AdError {
	return errortypes.NewAdError(ErrorDomain, code, message, &errortypes.BadInput{Message: message})
}

func newInvalidAdSizeError(size mediation.AdSize) *errortypes.AdError {
	return newConfigurationError(ErrorCodeInvalidAdSize, fmt.Sprintf("Invalid banner ad size requested: %s.", size))
}

func newMismatchAdSizeError(requested mediation.AdSize, view mediation.View) *errortypes.AdError {
	message := fmt.Sprintf("%s Expected %s, but received %dx%d.", errorMsgMismatchSize, requested, view.LogicalWidth(), view.LogicalHeight())
	return errortypes.NewAdError(ErrorDomain, ErrorCodeMismatchAdSize, message, &errortypes.BadServerResponse{Message: message})
}

func newInitializationError(err error) *errortypes.AdError {
	message := fmt.Sprintf("FiveAd SDK failed to initialize: %v.", err)
	return errortypes.NewAdError(ErrorDomain, ErrorCodeInitializationFailure, message, &errortypes.FailedToInitialize{Message: message})
}

// newSDKLoadError passes a FiveAd load error through with its native code.
func newSDKLoadError(code fivead.ErrorCode) *errortypes.AdError {
	message := fmt.Sprintf("FiveAd SDK returned a load error with code %s.", code)
	return errortypes.NewAdError(SDKErrorDomain, code.Value(), message, &errortypes.FailedToLoad{Message: message})
}
