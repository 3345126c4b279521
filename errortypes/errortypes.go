package errortypes

// Timeout should be used to flag that a load request did not resolve before the host stopped waiting.
type Timeout struct {
	Message string
}

func (err *Timeout) Error() string {
	return err.Message
}

func (err *Timeout) Code() int {
	return TimeoutErrorCode
}

func (err *Timeout) Severity() Severity {
	return SeverityFatal
}

// BadInput should be used when returning errors which are caused by bad input.
// It should _not_ be used if the error is a server-side issue (e.g. failed to send the external request).
//
// BadInput errors will not be written to the app log, since it's not an actionable item for the host.
type BadInput struct {
	Message string
}

func (err *BadInput) Error() string {
	return err.Message
}

func (err *BadInput) Code() int {
	return BadInputErrorCode
}

func (err *BadInput) Severity() Severity {
	return SeverityFatal
}

// BadServerResponse should be used when returning errors which are caused by bad/unexpected behavior on
// the ad network's side, such as a creative whose size differs from the one requested.
type BadServerResponse struct {
	Message string
}

func (err *BadServerResponse) Error() string {
	return err.Message
}

func (err *BadServerResponse) Code() int {
	return BadServerResponseErrorCode
}

func (err *BadServerResponse) Severity() Severity {
	return SeverityFatal
}

// FailedToLoad should be used when the ad network declined or was unable to fill a request.
type FailedToLoad struct {
	Message string
}

func (err *FailedToLoad) Error() string {
	return err.Message
}

func (err *FailedToLoad) Code() int {
	return FailedToLoadErrorCode
}

func (err *FailedToLoad) Severity() Severity {
	return SeverityFatal
}

// FailedToInitialize should be used when the ad network SDK could not be initialized.
type FailedToInitialize struct {
	Message string
}

func (err *FailedToInitialize) Error() string {
	return err.Message
}

func (err *FailedToInitialize) Code() int {
	return FailedToInitializeErrorCode
}

func (err *FailedToInitialize) Severity() Severity {
	return SeverityFatal
}

// Warning is a generic non-fatal error. Throughout the codebase, an error can
// only be a warning if it's of the type defined below
type Warning struct {
	Message     string
	WarningCode int
}

func (err *Warning) Error() string {
	return err.Message
}

func (err *Warning) Code() int {
	return err.WarningCode
}

func (err *Warning) Severity() Severity {
	return SeverityWarning
}
