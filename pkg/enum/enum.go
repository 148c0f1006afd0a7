package enum

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry of closed string-backed enums. Values register themselves through
// New at package init time; ToEnum resolves untrusted input back to a
// registered value and rejects everything else.
var (
	mutex    sync.RWMutex
	registry = map[reflect.Type]map[string]any{}
)

func New[T ~string](value T) T {
	mutex.Lock()
	defer mutex.Unlock()

	t := reflect.TypeOf(value)
	values, ok := registry[t]
	if !ok {
		values = map[string]any{}
		registry[t] = values
	}

	values[string(value)] = value
	return value
}

func ToEnum[T ~string](s string) (T, error) {
	var zero T

	mutex.RLock()
	defer mutex.RUnlock()

	values, ok := registry[reflect.TypeOf(zero)]
	if !ok {
		return zero, fmt.Errorf("no enum registered for type %T", zero)
	}

	value, ok := values[s]
	if !ok {
		return zero, fmt.Errorf("%s is not a valid %T", s, zero)
	}

	return value.(T), nil
}
