package domain

import "errors"

var (
	// ErrSourceUnreadable is returned when an input source cannot be opened or read
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrSinkUnwritable is returned when the results destination cannot be created or written
	ErrSinkUnwritable = errors.New("sink unwritable")

	// ErrSerialization is returned when a record cannot be encoded for output
	ErrSerialization = errors.New("record serialization failed")

	// ErrRemoteFetch is returned when a remote source request fails
	ErrRemoteFetch = errors.New("remote fetch failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrKeywordNotFound is returned when no product carries a keyword
	ErrKeywordNotFound = errors.New("keyword not found in index")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
