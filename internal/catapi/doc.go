// Package catapi talks to a random image-search endpoint such as
// https://api.thecatapi.com/v1/images/search.
//
// The endpoint is queried with GET <endpoint>?limit=<n> and answers with a
// JSON array of objects carrying at least a url field:
//
//	[{"id":"abc","url":"https://cdn2.thecatapi.com/images/abc.jpg","width":500,"height":375}]
//
// Any deviation (transport error, non-2xx status, non-JSON body, missing
// url) is reported as an error wrapping ErrNetwork or ErrDecode. Callers are
// expected to recover with FallbackURLs rather than surface the failure.
package catapi
