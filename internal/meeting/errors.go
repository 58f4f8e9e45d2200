package meeting

// ValidationError reports a structural invariant violation on the aggregate.
// The first broken rule in check order wins; no multi-error aggregation.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// ForbiddenError reports that the requester lacks ownership of the meeting
// for an owner-only operation.
type ForbiddenError struct {
	Message string
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// NotFoundError reports that a referenced meeting or participant does not exist.
type NotFoundError struct {
	Message string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// BadRequestError reports a request-level violation that is neither a
// structural invariant nor an ownership failure.
type BadRequestError struct {
	Message string
}

// Error implements the error interface.
func (e *BadRequestError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}
