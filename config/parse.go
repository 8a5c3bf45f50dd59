package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is wrapped by every ParseError.
var ErrSyntax = errors.New("config: syntax error")

// ParseError reports a malformed line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config: line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// Parse reads "key = value" lines from data into c. Lines that are empty or
// start with the comment byte are skipped. Parsing stops at the first
// malformed line; entries read before it are kept.
func (c *Config) Parse(data []byte) error {
	if c.closed() {
		return ErrClosed
	}

	for lineNo := 1; len(data) > 0; lineNo++ {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})

		if len(line) == 0 || line[0] == c.comment {
			continue
		}

		key, value, msg := parseLine(line, c.delim)
		if msg == "" {
			msg = c.checkEntry(key, value)
		}
		if msg != "" {
			c.logger.Printf("line %d: %s", lineNo, msg)
			return &ParseError{Line: lineNo, Msg: msg}
		}
		if err := c.Set(key, value); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return nil
}

// parseLine splits one line into key and value. Blanks outside quotes are
// dropped. A quoted value must close at the end of the line, and the
// delimiter is literal inside quotes. A non-empty msg describes the error.
func parseLine(line []byte, delim byte) (key, value string, msg string) {
	var (
		k, v      strings.Builder
		haveKey   bool
		haveQuote bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if !haveKey {
				return "", "", `unexpected '"'`
			}
			if haveQuote && i+1 < len(line) {
				return "", "", fmt.Sprintf(`unexpected '%c' after '"'`, line[i+1])
			}
			haveQuote = !haveQuote
		case c == ' ' || c == '\t':
			if haveQuote {
				v.WriteByte(c)
			}
		case c == delim && !haveQuote:
			if haveKey {
				return "", "", fmt.Sprintf("unexpected '%c'", delim)
			}
			haveKey = true
		case haveKey:
			v.WriteByte(c)
		default:
			k.WriteByte(c)
		}
	}

	switch {
	case !haveKey:
		return "", "", "missing key delimiter"
	case haveQuote:
		return "", "", "unterminated quote"
	case k.Len() == 0:
		return "", "", "empty key"
	}
	return k.String(), v.String(), ""
}

// checkEntry returns a non-empty message when key or value could not be saved
// and loaded back unchanged.
func (c *Config) checkEntry(key, value string) string {
	if key == "" {
		return "empty key"
	}
	if key[0] == c.comment {
		return fmt.Sprintf("key starts with comment '%c'", c.comment)
	}
	for i := 0; i < len(key); i++ {
		switch b := key[i]; {
		case b == ' ' || b == '\t':
			return "blank in key"
		case b == c.delim:
			return fmt.Sprintf("delimiter '%c' in key", c.delim)
		case b == '"':
			return `'"' in key`
		case b < 0x20 || b == 0x7f:
			return fmt.Sprintf("control character %#02x in key", b)
		}
	}
	if i := strings.IndexAny(value, "\"\n\r"); i >= 0 {
		return fmt.Sprintf("%q in value", value[i])
	}
	return ""
}

// needsQuotes reports whether value must be quoted to survive a reload.
func needsQuotes(value string, delim byte) bool {
	return strings.ContainsAny(value, " \t") || strings.IndexByte(value, delim) >= 0
}
