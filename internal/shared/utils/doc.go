// Package utils provides request validation helpers shared by the REST API
// and the host bridge.
package utils
