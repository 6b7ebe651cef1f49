package httpclient

import "context"

// Compose folds middlewares around terminal into a single Handler.
// Middlewares are applied in order: the first middleware is outermost
// (sees the request first and the response last).
//
// Compose(t, a, b, c) behaves like a(b(c(t))).
func Compose(terminal Handler, middlewares ...Middleware) Handler {
	h := terminal
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = link(middlewares[i], h)
	}
	return h
}

func link(m Middleware, next Handler) Handler {
	return func(ctx context.Context, req Request) (*Response, error) {
		return m(ctx, req, next)
	}
}
