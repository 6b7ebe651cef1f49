// Package errors provides the error taxonomy shared by the request pipeline,
// the REST client and the session layer.
//
// Every failure that crosses a package boundary is an *AppError carrying a
// machine-readable ErrorCode, a message, a retryable flag, optional details
// and the underlying cause. The cause is reachable through errors.Unwrap, so
// callers can still match on the original transport error:
//
//	_, err := client.Get(ctx, "/sessions", nil)
//	switch {
//	case errors.Is(err, errors.ErrCodeTimeout):
//	    // deadline hit before the exchange completed
//	case errors.Is(err, errors.ErrCodeServerFailure):
//	    // envelope status >= 500
//	}
package errors
