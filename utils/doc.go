// Package utils provides time formatting helpers shared by the SIRI
// converter and the HTTP service.
package utils
