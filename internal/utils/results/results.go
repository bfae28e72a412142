package results

// OperationResult carries the outcome of a service operation. Success and
// Failure are event payloads; infrastructure problems travel on the separate
// error return.
type OperationResult struct {
	Success interface{}
	Failure interface{}
}

// IsSuccess reports whether the operation produced a success payload.
func (r OperationResult) IsSuccess() bool {
	return r.Success != nil
}

// IsFailure reports whether the operation produced a failure payload.
func (r OperationResult) IsFailure() bool {
	return r.Failure != nil
}

// HandlerResult is a topic/payload pair to be published by a message handler.
type HandlerResult struct {
	Topic   string
	Payload interface{}
}

// MapToHandlerResults converts an operation result into the messages a
// handler should publish. An empty topic drops that arm, so a handler whose
// service publishes its own success events passes "" for successTopic.
func (r OperationResult) MapToHandlerResults(successTopic, failureTopic string) []HandlerResult {
	var out []HandlerResult
	if r.Failure != nil && failureTopic != "" {
		out = append(out, HandlerResult{Topic: failureTopic, Payload: r.Failure})
	}
	if r.Success != nil && successTopic != "" {
		out = append(out, HandlerResult{Topic: successTopic, Payload: r.Success})
	}
	return out
}
