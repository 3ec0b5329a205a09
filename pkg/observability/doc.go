/*
Package observability provides Prometheus instrumentation for the espalier
turn engine: turn throughput and latency, error containment hits, emitted
system acts, and handler-conflict volume.
*/
package observability
