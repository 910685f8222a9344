package cmd

import (
	"math"
	"strconv"
	"strings"
	"time"

	"keygrid/internal/store"
)

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrNotInteger
	}
	return n, nil
}

func parseInt64(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}
	return n, nil
}

// parseFloat accepts the usual decimal forms plus inf, +inf and -inf.
func parseFloat(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "inf", "+inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, ErrNotFloat
	}
	return f, nil
}

// parseBound reads a ZRANGEBYSCORE style bound where a leading '(' makes it
// exclusive.
func parseBound(s string) (store.ScoreBound, error) {
	b := store.ScoreBound{}
	if strings.HasPrefix(s, "(") {
		b.Exclusive = true
		s = s[1:]
	}
	f, err := parseFloat(s)
	if err != nil {
		return b, ErrMinMax
	}
	b.Value = f
	return b, nil
}

// maxTimeoutSeconds is the longest timeout a time.Duration can hold.
const maxTimeoutSeconds = float64(math.MaxInt64 / int64(time.Second))

// parseTimeout reads a blocking timeout in (possibly fractional) seconds. Zero
// means block forever.
func parseTimeout(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > maxTimeoutSeconds {
		return 0, ErrTimeout
	}
	if f < 0 {
		return 0, ErrNegTimeout
	}
	return time.Duration(f * float64(time.Second)), nil
}

// pairs checks that args holds an even, non-zero number of items.
func pairs(args []string) error {
	if len(args) == 0 || len(args)%2 != 0 {
		return ErrSyntax
	}
	return nil
}

// optionalCount parses the trailing count of SPOP/SRANDMEMBER style commands.
func optionalCount(args []string) (count int, has bool, err error) {
	switch len(args) {
	case 0:
		return 0, false, nil
	case 1:
		n, err := parseInt(args[0])
		return n, err == nil, err
	default:
		return 0, false, ErrSyntax
	}
}

func withScores(args []string) (bool, error) {
	switch {
	case len(args) == 0:
		return false, nil
	case len(args) == 1 && strings.EqualFold(args[0], "WITHSCORES"):
		return true, nil
	default:
		return false, ErrSyntax
	}
}

// keysAndTimeout splits "key [key ...] timeout".
func keysAndTimeout(args []string) ([]string, time.Duration, error) {
	timeout, err := parseTimeout(args[len(args)-1])
	if err != nil {
		return nil, 0, err
	}
	return args[:len(args)-1], timeout, nil
}
