// Package ids generates short identifiers used to correlate log lines with a single connection.
package ids

import (
	"crypto/rand"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewTaskID returns an 8-character alphanumeric identifier for a newly accepted connection.
func NewTaskID() string {
	return randomAlphanumeric(8)
}

func randomAlphanumeric(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("ids: system randomness unavailable: " + err.Error())
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphanumeric[int(b)%len(alphanumeric)]
	}
	return string(out)
}
