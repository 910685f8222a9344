package resp

import (
	"bufio"
	"fmt"
	"strconv"
)

var (
	okLine        = []byte("+OK\r\n")
	nullBulkLine  = []byte("$-1\r\n")
	nullArrayLine = []byte("*-1\r\n")
	crlf          = []byte("\r\n")
)

func OK() Value                 { return Value{Type: SimpleString, Str: "OK"} }
func Simple(s string) Value     { return Value{Type: SimpleString, Str: s} }
func Err(msg string) Value      { return Value{Type: Error, Str: msg} }
func Int(n int64) Value         { return Value{Type: Integer, Int: n} }
func Bulk(s string) Value       { return Value{Type: BulkString, Str: s} }
func NullBulk() Value           { return Value{Type: BulkString, IsNull: true} }
func NullArray() Value          { return Value{Type: Array, IsNull: true} }
func ArrayOf(vs ...Value) Value { return Value{Type: Array, Array: vs} }

// BulkArray wraps strings as an array of bulk strings.
func BulkArray(ss []string) Value {
	vs := make([]Value, len(ss))
	for i, s := range ss {
		vs[i] = Bulk(s)
	}
	return ArrayOf(vs...)
}

// Write encodes v into w. The caller flushes.
func Write(w *bufio.Writer, v Value) error {
	switch v.Type {
	case SimpleString:
		if v.Str == "OK" {
			_, err := w.Write(okLine)
			return err
		}
		return writeLine(w, '+', v.Str)
	case Error:
		return writeLine(w, '-', v.Str)
	case Integer:
		return writeInt(w, ':', v.Int)
	case BulkString:
		if v.IsNull {
			_, err := w.Write(nullBulkLine)
			return err
		}
		if err := writeInt(w, '$', int64(len(v.Str))); err != nil {
			return err
		}
		if _, err := w.WriteString(v.Str); err != nil {
			return err
		}
		_, err := w.Write(crlf)
		return err
	case Array:
		if v.IsNull {
			_, err := w.Write(nullArrayLine)
			return err
		}
		if err := writeInt(w, '*', int64(len(v.Array))); err != nil {
			return err
		}
		for _, el := range v.Array {
			if err := Write(w, el); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("resp: unknown type %d", v.Type)
	}
}

func writeLine(w *bufio.Writer, prefix byte, s string) error {
	if err := w.WriteByte(prefix); err != nil {
		return err
	}
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	_, err := w.Write(crlf)
	return err
}

func writeInt(w *bufio.Writer, prefix byte, n int64) error {
	var buf [24]byte
	b := append(buf[:0], prefix)
	b = strconv.AppendInt(b, n, 10)
	b = append(b, '\r', '\n')
	_, err := w.Write(b)
	return err
}

// EncodeCommand renders args as a request frame.
func EncodeCommand(args ...string) []byte {
	b := make([]byte, 0, 16*len(args))
	b = append(b, '*')
	b = strconv.AppendInt(b, int64(len(args)), 10)
	b = append(b, crlf...)
	for _, a := range args {
		b = append(b, '$')
		b = strconv.AppendInt(b, int64(len(a)), 10)
		b = append(b, crlf...)
		b = append(b, a...)
		b = append(b, crlf...)
	}
	return b
}
