// Package server exposes a form over HTTP and WebSocket.
//
// Every request runs its form operation on the form's loop, so handlers never
// touch the form concurrently. Routes:
//
//	GET    /values              flat values
//	GET    /values/nested       values with dotted keys expanded
//	PATCH  /values              write many values; unknown keys are skipped
//	GET    /fields/{key}        one field: value, status, last run error
//	PUT    /fields/{key}        write one value
//	PUT    /fields/{key}/error  push a manual error status
//	GET    /errors              control errors
//	GET    /errors/global       global validator errors
//	GET    /validity            true, false or "pending"
//	GET    /ws/errors           live snapshots of all of the above
//	GET    /metrics             Prometheus metrics
package server
