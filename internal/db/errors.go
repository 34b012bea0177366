package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrBadCursor   = errors.New("db: malformed cursor")
	ErrUnsupported = errors.New("db: unsupported query")
)

// Op constants name the failing backend operation for error context.
const (
	OpPing     = "PING"
	OpFind     = "FIND"
	OpFindOne  = "FINDONE"
	OpReplace  = "REPLACE"
	OpInc      = "INC"
	OpIndex    = "CREATEINDEX"
	OpDel      = "DEL"
	OpGet      = "GET"
	OpSet      = "SET"
	OpLPush    = "LPUSH"
	OpLRange   = "LRANGE"
	OpSAdd     = "SADD"
	OpSMembers = "SMEMBERS"
	OpDecode   = "DECODE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
