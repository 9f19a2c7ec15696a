// Package handler implements the HTTP API over a client repository.
//
// # Routes
//
//	GET    /api/clients             list (short form), filtered and paged
//	GET    /api/clients/count       count, same filters
//	POST   /api/clients             create
//	POST   /api/clients/sort        sort by the primary field
//	GET    /api/clients/{id}        full record
//	PUT    /api/clients/{id}        replace
//	DELETE /api/clients/{id}        delete
//	GET    /events                  repository events as SSE
//	GET    /metrics                 Prometheus metrics
//	GET    /healthz                 liveness
//
// List and count accept surname, min_balance, max_balance, has_email,
// sort and order. These build a filter.Decorator for the one request
// and never change the shared repository.
//
// # Response Format
//
// Success responses return JSON data with 200 or 201. Error responses
// return JSON with {error, details} and, for validation failures, the
// list of invalid fields.
package handler
