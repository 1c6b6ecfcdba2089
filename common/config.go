package common

import (
	"fmt"
	"time"
)

// Configuration is a runtime concern.  Components pull the values they
// need at construction time and fall back to sensible defaults when a
// key is absent.  Values are stored loosely typed; a value of the wrong
// type is a programming error and panics.
//
// Durations are not stored in explicit time.Duration format, but
// instead are stored as a normal integer (type: int) and interpreted
// as milliseconds.
type ConfigType string

const (
	Bool     = "bool"
	Int      = "int"
	Duration = "int(milliseconds)"
)

type ConfigParsingError struct {
	expected ConfigType
	key      string
	val      interface{}
}

func (c ConfigParsingError) Error() string {
	return fmt.Sprintf("Error parsing config key [%s].  Expected type [%s], which can't be converted from [%v]", c.key, c.expected, c.val)
}

type Config interface {
	OptionalInt(key string, def int) int
	OptionalBool(key string, def bool) bool
	OptionalDuration(key string, def time.Duration) time.Duration
}

func NewEmptyConfig() Config {
	return NewConfig(nil)
}

func NewConfig(internal map[string]interface{}) Config {
	if internal == nil {
		internal = make(map[string]interface{})
	}

	return &config{internal}
}

type config struct {
	internal map[string]interface{}
}

func (c *config) OptionalInt(key string, def int) int {
	val, ok := c.internal[key]
	if !ok {
		return def
	}

	ret, ok := val.(int)
	if !ok {
		panic(ConfigParsingError{Int, key, val})
	}

	return ret
}

func (c *config) OptionalBool(key string, def bool) bool {
	val, ok := c.internal[key]
	if !ok {
		return def
	}

	ret, ok := val.(bool)
	if !ok {
		panic(ConfigParsingError{Bool, key, val})
	}

	return ret
}

func (c *config) OptionalDuration(key string, def time.Duration) time.Duration {
	val, ok := c.internal[key]
	if !ok {
		return def
	}

	ret, ok := val.(int)
	if !ok {
		panic(ConfigParsingError{Duration, key, val})
	}

	return time.Duration(ret) * time.Millisecond
}
