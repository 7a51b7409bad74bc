// Package handler implements the gateway HTTP API.
//
// Every JSON response uses the Response envelope. Domain errors are mapped
// to HTTP status codes from the last four digits of their code, so
// TG-CHAT-4040 becomes 404 and TG-RATE-4290 becomes 429 with Retry-After.
package handler
