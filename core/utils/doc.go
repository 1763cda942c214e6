// Package utils provides small conversion helpers for semi-structured data.
// Source records arrive as decoded JSON where the same field may be a number
// in one item and a string in the next; these helpers normalize such values.
package utils
