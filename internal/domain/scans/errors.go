package scans

import "errors"

// ErrRecordNotFound indicates no record matched the id or correlation path.
// Merge and delete callers treat it as benign.
var ErrRecordNotFound = errors.New("scan record not found")

// ErrDuplicatePending indicates a pending record already exists for the path.
var ErrDuplicatePending = errors.New("pending scan already exists for path")

// ErrAllUploadsFailed indicates every configured upload backend failed.
var ErrAllUploadsFailed = errors.New("all upload backends failed")

// ErrClassificationTimeout indicates the engine exceeded its wall-clock bound.
var ErrClassificationTimeout = errors.New("classification timed out")

// ErrMalformedVerdict indicates the engine produced output without the
// expected verdict fields. Distinct from a crash.
var ErrMalformedVerdict = errors.New("malformed classification verdict")
