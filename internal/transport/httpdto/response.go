package httpdto

// ErrorBody is the failure shape every endpoint shares. Details carries the
// technical cause when one is safe to expose.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func NewError(msg string) ErrorBody {
	return ErrorBody{Error: msg}
}

func NewErrorWithDetails(msg string, err error) ErrorBody {
	body := ErrorBody{Error: msg}
	if err != nil {
		body.Details = err.Error()
	}
	return body
}
