// Package resp reads and writes the RESP2 wire protocol.
package resp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrUnknownPrefix   = errors.New("resp: unknown prefix")
	ErrBadLineEnding   = errors.New("resp: bad line ending, expected CRLF")
	ErrInvalidArrayLen = errors.New("resp: invalid array length")
	ErrInvalidBulkLen  = errors.New("resp: invalid bulk string length")
	ErrEmptyCommand    = errors.New("resp: empty command")
	ErrExpectedBulk    = errors.New("resp: expected bulk string")
	ErrTooLarge        = errors.New("resp: frame too large")
)

// Limits
const (
	MaxBulkLen     = 512 * 1024 * 1024
	DefaultMaxArgs = 1024 * 1024
)

// Type is the RESP2 value kind.
type Type int

const (
	SimpleString Type = iota
	Error
	Integer
	BulkString
	Array
)

// Value is one RESP2 value. IsNull marks the null bulk string and the null
// array.
type Value struct {
	Type   Type
	Str    string
	Int    int64
	Array  []Value
	IsNull bool
}

// Parse reads any RESP2 value.
func Parse(r *bufio.Reader) (Value, error) {
	b, err := r.ReadByte()
	if err != nil {
		return Value{}, err
	}
	switch b {
	case '+', '-':
		line, err := readLine(r)
		if err != nil {
			return Value{}, err
		}
		t := SimpleString
		if b == '-' {
			t = Error
		}
		return Value{Type: t, Str: string(line)}, nil
	case ':':
		line, err := readLine(r)
		if err != nil {
			return Value{}, err
		}
		n, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("resp: invalid integer: %w", err)
		}
		return Value{Type: Integer, Int: n}, nil
	case '$':
		s, null, err := readBulkBody(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: BulkString, Str: s, IsNull: null}, nil
	case '*':
		n, err := readLength(r, ErrInvalidArrayLen)
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			return Value{Type: Array, IsNull: true}, nil
		}
		arr := make([]Value, n)
		for i := range arr {
			if arr[i], err = Parse(r); err != nil {
				return Value{}, err
			}
		}
		return Value{Type: Array, Array: arr}, nil
	default:
		return Value{}, ErrUnknownPrefix
	}
}

// ReadCommand reads one request: an array of bulk strings, or an inline
// command line such as "PING" typed into a raw TCP session. The first element
// is the command name as sent.
func ReadCommand(r *bufio.Reader, maxArgs int) ([]string, error) {
	if maxArgs <= 0 {
		maxArgs = DefaultMaxArgs
	}
	b, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if b != '*' {
		if err := r.UnreadByte(); err != nil {
			return nil, err
		}
		return readInline(r, maxArgs)
	}

	n, err := readLength(r, ErrInvalidArrayLen)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, ErrEmptyCommand
	}
	if n > maxArgs {
		return nil, ErrTooLarge
	}

	args := make([]string, n)
	for i := range args {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != '$' {
			return nil, ErrExpectedBulk
		}
		s, null, err := readBulkBody(r)
		if err != nil {
			return nil, err
		}
		if null && i == 0 {
			return nil, ErrExpectedBulk
		}
		args[i] = s
	}
	return args, nil
}

func readInline(r *bufio.Reader, maxArgs int) ([]string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return nil, err
	}
	fields := strings.Fields(strings.TrimRight(line, "\r\n"))
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}
	if len(fields) > maxArgs {
		return nil, ErrTooLarge
	}
	return fields, nil
}

func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, ErrBadLineEnding
	}
	return line[:len(line)-2], nil
}

// readLength parses a length line. -1 is the null marker; any other negative
// value is invalid.
func readLength(r *bufio.Reader, invalid error) (int, error) {
	line, err := readLine(r)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(string(line))
	if err != nil || n < -1 {
		return 0, invalid
	}
	return n, nil
}

// readBulkBody reads the part of a bulk string after the '$' prefix.
func readBulkBody(r *bufio.Reader) (string, bool, error) {
	n, err := readLength(r, ErrInvalidBulkLen)
	if err != nil {
		return "", false, err
	}
	if n < 0 {
		return "", true, nil
	}
	if n > MaxBulkLen {
		return "", false, ErrTooLarge
	}
	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", false, err
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return "", false, ErrBadLineEnding
	}
	return string(buf[:n]), false, nil
}
