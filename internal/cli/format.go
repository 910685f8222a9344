package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

var errUnbalancedQuotes = errors.New("invalid argument(s): unbalanced quotes")

// SplitArgs splits a command line into words. Double quoted words understand
// Go escapes such as \n and \x41; single quoted words are taken literally.
func SplitArgs(line string) ([]string, error) {
	var (
		args []string
		cur  strings.Builder
		in   bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == ' ' || ch == '\t':
			if in {
				args = append(args, cur.String())
				cur.Reset()
				in = false
			}
		case ch == '"':
			end := closingQuote(line, i+1)
			if end < 0 {
				return nil, errUnbalancedQuotes
			}
			s, err := strconv.Unquote(line[i : end+1])
			if err != nil {
				return nil, errUnbalancedQuotes
			}
			cur.WriteString(s)
			in = true
			i = end
		case ch == '\'':
			end := strings.IndexByte(line[i+1:], '\'')
			if end < 0 {
				return nil, errUnbalancedQuotes
			}
			cur.WriteString(line[i+1 : i+1+end])
			in = true
			i += end + 1
		default:
			cur.WriteByte(ch)
			in = true
		}
	}
	if in {
		args = append(args, cur.String())
	}
	return args, nil
}

// closingQuote finds the unescaped '"' at or after from.
func closingQuote(line string, from int) int {
	for i := from; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// Format renders a reply the way redis-cli does. Raw output prints values
// bare, one per line.
func Format(v interface{}, err error, raw bool) string {
	if errors.Is(err, redis.Nil) {
		if raw {
			return ""
		}
		return "(nil)"
	}
	if err != nil {
		if raw {
			return err.Error()
		}
		return "(error) " + err.Error()
	}
	var b strings.Builder
	format(&b, v, raw, "")
	return strings.TrimRight(b.String(), "\n")
}

func format(b *strings.Builder, v interface{}, raw bool, indent string) {
	switch x := v.(type) {
	case nil:
		if !raw {
			b.WriteString("(nil)")
		}
		b.WriteString("\n")
	case string:
		if x == "" && !raw {
			x = `""`
		}
		b.WriteString(x)
		b.WriteString("\n")
	case int64:
		if !raw {
			b.WriteString("(integer) ")
		}
		b.WriteString(strconv.FormatInt(x, 10))
		b.WriteString("\n")
	case []interface{}:
		if len(x) == 0 {
			if !raw {
				b.WriteString("(empty array)")
			}
			b.WriteString("\n")
			return
		}
		width := len(strconv.Itoa(len(x)))
		for i, item := range x {
			if raw {
				format(b, item, raw, "")
				continue
			}
			if i > 0 {
				b.WriteString(indent)
			}
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			b.WriteString(prefix)
			format(b, item, raw, indent+strings.Repeat(" ", len(prefix)))
		}
	case error:
		b.WriteString("(error) " + x.Error() + "\n")
	default:
		fmt.Fprintf(b, "%v\n", x)
	}
}
