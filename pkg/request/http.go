package request

import (
	"github.com/dmitrymomot/kiln/pkg/decode"
	"github.com/dmitrymomot/kiln/pkg/secrets"
)

// Get fetches url with GET and decodes the JSON response with d.
func Get[T any](url secrets.Value[string], d decode.Decoder[T]) Request[T] {
	return Send(secrets.Map(url, func(u string) Details {
		return Details{URL: u}
	}), d)
}

// Send performs the call and decodes the JSON response with d.
// The retained response is minimized to what d reads.
func Send[T any](details secrets.Value[Details], d decode.Decoder[T]) Request[T] {
	return SendUnoptimized(details, ExpectJSON(d))
}

// SendUnoptimized performs the call and turns the response into a T with expect.
func SendUnoptimized[T any](details secrets.Value[Details], expect Expect[T]) Request[T] {
	calls := []secrets.Value[Details]{details}
	return Pending(calls, func(ac AppContext, rs Responses) (Delta, Request[T], error) {
		revealed, err := details.Reveal(ac.Env)
		if err != nil {
			return nil, Request[T]{}, err
		}
		fp := Fingerprint(revealed)

		body, ok := rs.Lookup(fp)
		if !ok {
			return nil, Request[T]{}, &MissingResponseError{Request: details.Masked().String(), Fingerprint: fp}
		}

		v, kept, err := expect.run(body, ac.Type)
		if err != nil {
			return nil, Request[T]{}, &DecodeError{Request: details.Masked().String(), Err: err}
		}
		return Delta{fp: kept}, Done(v), nil
	})
}
