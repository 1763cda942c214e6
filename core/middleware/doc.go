// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the ops endpoints.
//   - rayid: a unique request id (ray id) for every incoming request, stored
//     in the fiber locals and echoed in the X-Ray-ID response header.
package middleware
