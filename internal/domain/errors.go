// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested resource or route does not exist.
var ErrNotFound = errors.New("not found")

// ErrFetch indicates an upstream source could not be reached or returned an unusable response.
var ErrFetch = errors.New("fetch failed")

// ErrParse indicates the extraction logic could not locate or convert the expected data.
var ErrParse = errors.New("parse failed")
