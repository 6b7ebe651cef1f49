// Package rest provides a JSON envelope client built on httpclient.
//
// Servers answer with an envelope of the form
//
//	{"status": 404, "data": {...}, "errors": ["not found"]}
//
// The envelope status, not the transport status code, decides the outcome:
// statuses below 500 come back as an *Envelope[T] the caller branches on,
// and statuses of 500 or more come back as a SERVER_FAILURE error.
//
//	hc, _ := httpclient.New(httpclient.Config{BaseURL: "https://api.example.com"})
//	client := rest.New(hc)
//
//	env, err := rest.Get[User](ctx, client, "/users/123", nil)
//	if err != nil {
//	    return err
//	}
//	if env.Status == http.StatusNotFound {
//	    ...
//	}
//
//	created, err := rest.Post[User](ctx, client, "/users", CreateUser{Name: "Alice"}, nil)
package rest
