package utils

import (
	"errors"
	"net/url"
)

// RedactURLError masks the given query parameters in the URL carried by a
// *url.Error, so credentials sent in the query string never reach logs.
// Other errors are returned unchanged.
func RedactURLError(err error, params ...string) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	redacted := &url.Error{Op: urlErr.Op, Err: urlErr.Err}
	u, perr := url.Parse(urlErr.URL)
	if perr != nil {
		return redacted
	}

	query := u.Query()
	for _, p := range params {
		if query.Has(p) {
			query.Set(p, "REDACTED")
		}
	}
	u.RawQuery = query.Encode()
	redacted.URL = u.Redacted()
	return redacted
}
