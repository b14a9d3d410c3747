package arcgis

import (
	"errors"
	"fmt"
)

// ErrPaginationExceeded is returned when the page budget is exhausted
// before the server ever returns a short page. Partial data is never
// returned alongside it.
var ErrPaginationExceeded = errors.New("max pages exceeded without a short page")

// StatusError reports a non-2xx response from the feature service
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, e.Status)
}

// ServerError reports an error payload the feature service embedded in
// an otherwise successful (HTTP 200) response body. ArcGIS servers
// signal query failures this way.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("feature service error %d: %s", e.Code, e.Message)
}
