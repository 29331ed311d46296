package models

const (
	// GridWidth and GridHeight define the fixed market floor plan.
	GridWidth  = 24
	GridHeight = 16

	// OutboxQueueSize is the capacity of the in-memory notification queue.
	OutboxQueueSize = 256

	// RateLimitRPS and RateLimitBurst are the HTTP defaults per client.
	RateLimitRPS   = 10
	RateLimitBurst = 20
)
