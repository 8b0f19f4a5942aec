package vapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadLog(t *testing.T) {
	l := newPayloadLog(16)
	assert.Nil(t, l.Entries())

	l.Append([]byte("one"))
	l.Append([]byte("two"))
	assert.Equal(t, []string{"one", "two"}, l.Entries())
	// reading does not consume
	assert.Equal(t, []string{"one", "two"}, l.Entries())

	// 4 + 4 + 6 bytes fit, the fourth entry evicts "one"
	l.Append([]byte("three"))
	assert.Equal(t, []string{"one", "two", "three"}, l.Entries())
	l.Append([]byte("four"))
	assert.Equal(t, []string{"two", "three", "four"}, l.Entries())

	l.Reset()
	assert.Nil(t, l.Entries())
}

func TestPayloadLog_Oversized(t *testing.T) {
	l := newPayloadLog(8)
	l.Append([]byte("a"))
	l.Append([]byte("0123456789"))
	assert.Equal(t, []string{"3456789"}, l.Entries())
}

func TestPayloadLog_Newlines(t *testing.T) {
	l := newPayloadLog(64)
	l.Append([]byte("{\n\"type\":\"hang\"}"))
	assert.Equal(t, []string{`{\n"type":"hang"}`}, l.Entries())
}
