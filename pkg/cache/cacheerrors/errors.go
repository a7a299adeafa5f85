// Package cacheerrors holds the sentinel errors shared by every cache driver.
// It is a leaf package so that drivers can return them without importing pkg/cache.
package cacheerrors

import "errors"

// ErrKeyNotFound is returned (possibly wrapped) by Get when the key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// ErrUnsupportedValue is returned by drivers that persist strings when handed another type.
var ErrUnsupportedValue = errors.New("unsupported cache value type")

// ToString normalizes a cache value into the string form persisted by the string based drivers.
func ToString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", ErrUnsupportedValue
	}
}
