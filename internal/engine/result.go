package engine

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant held by a Result.
type Kind int

const (
	KindOK Kind = iota
	KindNil
	KindInt
	KindString
	// KindStatus is a short status line such as PONG or a type name.
	KindStatus
	KindMulti
	KindArray
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNil:
		return "nil"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindStatus:
		return "status"
	case KindMulti:
		return "multi"
	case KindArray:
		return "array"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of executing one Operation.
type Result struct {
	Kind  Kind
	Int   int64
	Str   string
	Multi []string
	Array []Result
}

func OK() Result                { return Result{Kind: KindOK} }
func Nil() Result               { return Result{Kind: KindNil} }
func Int(n int64) Result        { return Result{Kind: KindInt, Int: n} }
func Str(s string) Result       { return Result{Kind: KindString, Str: s} }
func Status(s string) Result    { return Result{Kind: KindStatus, Str: s} }
func Array(rs ...Result) Result { return Result{Kind: KindArray, Array: rs} }

// Multi wraps a sequence of byte strings. A nil slice becomes empty.
func Multi(ss []string) Result {
	if ss == nil {
		ss = []string{}
	}
	return Result{Kind: KindMulti, Multi: ss}
}

// Error builds a client-facing error result.
func Error(msg string) Result   { return Result{Kind: KindError, Str: msg} }

// Errorf builds a formatted error result.
func Errorf(format string, args ...interface{}) Result {
	return Error(fmt.Sprintf(format, args...))
}

// Bool maps true/false onto Int 1/0.
func Bool(b bool) Result {
	if b {
		return Int(1)
	}
	return Int(0)
}

// StrOrNil returns Str(s) when ok and Nil otherwise.
func StrOrNil(s string, ok bool) Result {
	if !ok {
		return Nil()
	}
	return Str(s)
}

func (r Result) IsError() bool { return r.Kind == KindError }

func (r Result) String() string {
	switch r.Kind {
	case KindOK:
		return "OK"
	case KindNil:
		return "(nil)"
	case KindInt:
		return strconv.FormatInt(r.Int, 10)
	case KindString, KindStatus:
		return r.Str
	case KindMulti:
		return fmt.Sprintf("%q", r.Multi)
	case KindArray:
		return fmt.Sprintf("%v", r.Array)
	case KindError:
		return "ERR " + r.Str
	default:
		return "?"
	}
}

// FormatScore renders a sorted set score the way clients expect: the
// shortest representation that round-trips, and inf/-inf for infinities.
func FormatScore(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Common client error messages.
const (
	msgBadRange   = "Bad Range!"
	msgNoList     = "No list at key!"
	msgNoSuchKey  = "no such key"
	msgNotInteger = "value is not an integer or out of range"
)
