package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookupEnv returns the first of keys set to a non-blank value
func lookupEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v, true
		}
	}
	return "", false
}

// fromEnv overwrites dst with the parsed value of the first variable of keys
// that is set. Values that do not parse are ignored.
func fromEnv[T any](dst *T, parse func(string) (T, error), keys ...string) {
	raw, ok := lookupEnv(keys...)
	if !ok {
		return
	}
	if v, err := parse(raw); err == nil {
		*dst = v
	}
}

func asString(s string) (string, error) { return s, nil }

// asList splits on commas, dropping blanks
func asList(s string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("empty list")
	}
	return out, nil
}

var (
	asInt      = strconv.Atoi
	asBool     = strconv.ParseBool
	asDuration = time.ParseDuration
)
