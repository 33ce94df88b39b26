// Package backend provides an HTTP client for the SaleCheck price service.
//
// # Endpoints
//
//   - POST /products/refresh: body {"ids": [...]}, returns an array of
//     {id, currentPriceText, originalPriceText?}
//   - GET /products/by_url?url=...: returns one product
//     {id, title, currentPriceText, originalPriceText}
//
// # Request Handling
//
// All requests use the caller's context, send Accept: application/json and
// a salecheck User-Agent, and are bounded by the client timeout (15 seconds
// unless configured).
//
// # Error Handling
//
// Failures are classified with two sentinels so callers can use errors.Is:
//
//   - ErrRemoteUnavailable: connection refused, DNS failure, timeout, or a
//     non-2xx status
//   - ErrMalformedResponse: the body was not the expected JSON
//
// Example error messages:
//   - "remote unavailable: api /products/refresh returned status 500"
//   - "malformed response: decode response: unexpected EOF"
//
// The client never retries; the refresh cadence is owned by the daemon.
//
// # Base URL
//
// The base accepts a bare host ("example.com", defaulting to https) or a full
// URL. Any path, query, or fragment on the base is discarded.
package backend
