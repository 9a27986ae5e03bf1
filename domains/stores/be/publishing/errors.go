package publishing

import (
	"errors"
	"fmt"
)

// Kind classifies why a publish failed.
type Kind string

const (
	KindConnection Kind = "connection"
	KindDirectory  Kind = "directory"
	KindUpload     Kind = "upload"
	KindEncoding   Kind = "encoding"
	KindTimeout    Kind = "timeout"
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrConnection = errors.New("remote store connection failed")
	ErrDirectory  = errors.New("destination directory could not be ensured")
	ErrUpload     = errors.New("one or more uploads failed")
	ErrEncoding   = errors.New("bundle cannot be transferred safely")
	ErrTimeout    = errors.New("publish timed out")
)

var kindSentinels = map[Kind]error{
	KindConnection: ErrConnection,
	KindDirectory:  ErrDirectory,
	KindUpload:     ErrUpload,
	KindEncoding:   ErrEncoding,
	KindTimeout:    ErrTimeout,
}

// Error is the single failure outcome of Publish.
type Error struct {
	Kind Kind
	// Path is the remote path involved, when a single one is.
	Path string
	// Failed lists bundle paths whose upload did not complete (KindUpload only).
	Failed []string
	Err    error
}

func (e *Error) Error() string {
	msg := kindSentinels[e.Kind].Error()
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if len(e.Failed) > 0 {
		msg += fmt.Sprintf(" %v", e.Failed)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUpload) and friends match on kind.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf reports the Kind of err, or "" when err is not a publish error.
func KindOf(err error) Kind {
	var pubErr *Error
	if errors.As(err, &pubErr) {
		return pubErr.Kind
	}
	return ""
}
