package fivead

import "strconv"

// ErrorCode is a failure reason reported by the FiveAd SDK.
type ErrorCode int

const (
	ErrorNetworkError       ErrorCode = 1
	ErrorNoCachedAd         ErrorCode = 2
	ErrorNoFill             ErrorCode = 3
	ErrorBadAppID           ErrorCode = 4
	ErrorStorageError       ErrorCode = 5
	ErrorInternalError      ErrorCode = 6
	ErrorInvalidState       ErrorCode = 7
	ErrorBadSlotID          ErrorCode = 8
	ErrorSuppressed         ErrorCode = 9
	ErrorContentUnavailable ErrorCode = 10
	ErrorPlayerError        ErrorCode = 11
)

var errorCodeNames = map[ErrorCode]string{
	ErrorNetworkError:       "NETWORK_ERROR",
	ErrorNoCachedAd:         "NO_CACHED_AD",
	ErrorNoFill:             "NO_FILL",
	ErrorBadAppID:           "BAD_APP_ID",
	ErrorStorageError:       "STORAGE_ERROR",
	ErrorInternalError:      "INTERNAL_ERROR",
	ErrorInvalidState:       "INVALID_STATE",
	ErrorBadSlotID:          "BAD_SLOT_ID",
	ErrorSuppressed:         "SUPPRESSED",
	ErrorContentUnavailable: "CONTENT_UNAVAILABLE",
	ErrorPlayerError:        "PLAYER_ERROR",
}

// Value returns the numeric code the SDK assigns to this error.
func (c ErrorCode) Value() int {
	return int(c)
}

// String returns the SDK's symbolic name for the code, e.g. "NO_FILL".
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN_" + strconv.Itoa(int(c))
}

// ParseErrorCode looks up a code by its symbolic name.
func ParseErrorCode(name string) (ErrorCode, bool) {
	for code, codeName := range errorCodeNames {
		if codeName == name {
			return code, true
		}
	}
	return 0, false
}
