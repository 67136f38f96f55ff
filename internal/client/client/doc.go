// Package client talks to the remote Dragon Ball API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for listing and
//     fetching characters and planets, plus Ping for the online status.
//  2. A concrete HTTP implementation (see HTTPClient) that issues plain GET
//     requests and decodes the JSON bodies into the wire records of package
//     models.
//
// There is no retry, authentication or pagination: a list call asks for one
// page of at most limit records.
//
// # Error Handling
//
// Failures are mapped onto sentinel errors that callers match with errors.Is:
// ErrUnavailable (transport failure or a non-2xx status), ErrNotFound (404)
// and ErrDecode (a body that does not have the expected shape).
//
// See Also
//
//   - Interface: Client
//   - HTTP impl: HTTPClient
package client
