/*
Package restclient is a configuration driven client for REST APIs.

A Configuration collects the API host, timeouts, basic auth credentials,
proxy, TLS trust and key stores, static headers and interceptors:

	cfg, err := restclient.NewConfigurationBuilder("api.example.com").
		UseBasicAuth("alice", "s3cret").
		WithRequestHeader("Accept", "application/json").
		AddRequestInterceptor(restclient.RequestIDInterceptor{}).
		Build()

A Client built from it submits Requests, which are one of GET, POST, PUT or
DELETE with a Body:

	client, err := restclient.New(cfg)
	defer client.Close()

	res, err := client.Submit(ctx, restclient.Get("/v1/items/{id}").WithPathParam("id", 42))
	if restclient.IsNotFound(err) {
		...
	}

Interceptors see every request before it is sent and may rewrite its headers
and form parameters, or reject it by returning an error.
*/
package restclient
