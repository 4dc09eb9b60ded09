package transport

import "time"

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 512 * 1024
)

type Config struct {
	Endpoint         string
	HandshakeTimeout time.Duration
	SendBuffer       int
	Backoff          Backoff
}

func (c Config) withDefaults() Config {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.Backoff.Base <= 0 {
		c.Backoff.Base = DefaultBackoff().Base
	}
	if c.Backoff.Max <= 0 {
		c.Backoff.Max = DefaultBackoff().Max
	}
	if c.Backoff.MaxAttempts <= 0 {
		c.Backoff.MaxAttempts = DefaultBackoff().MaxAttempts
	}
	return c
}
