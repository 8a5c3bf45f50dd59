// Package config keeps "key = value" settings in a string-keyed chash.Table and
// persists them to a line-oriented file.
//
// The table itself allows duplicate keys; Config keeps keys unique by looking a
// key up before every write and replacing the value of the existing node.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/theflywheel/chash"
)

// DefaultBuckets is the bucket count of a config table unless overridden by
// WithBuckets or CHASH_CONFIG_BUCKETS.
const DefaultBuckets = 37

// ErrClosed is returned by operations on a closed Config.
var ErrClosed = errors.New("config: closed")

type chashNode = chash.Node[string, string]

// Config is a set of unique string keys with string values.
// It is not safe for concurrent use.
type Config struct {
	table   *chash.Table[string, string]
	delim   byte
	comment byte
	logger  *log.Logger
}

// Option configures a Config.
type Option func(*settings)

type settings struct {
	buckets int
	delim   byte
	comment byte
	logger  *log.Logger
	alloc   chash.Allocator
}

// WithDelim sets the byte separating keys from values. The default is '='.
func WithDelim(d byte) Option {
	return func(s *settings) { s.delim = d }
}

// WithComment sets the byte that starts a comment line. The default is '#'.
func WithComment(c byte) Option {
	return func(s *settings) { s.comment = c }
}

// WithBuckets sets the bucket count of the underlying table.
func WithBuckets(n int) Option {
	return func(s *settings) { s.buckets = n }
}

// WithLogger sends parse diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAllocator charges the underlying table's memory to a.
func WithAllocator(a chash.Allocator) Option {
	return func(s *settings) { s.alloc = a }
}

// defaults reads the CHASH_CONFIG_* environment through env/v2, which caches
// the environment on first use: later changes are seen only after env.Load().
func defaults() settings {
	s := settings{
		buckets: env.Int("CHASH_CONFIG_BUCKETS", DefaultBuckets),
		delim:   '=',
		comment: '#',
		logger:  log.New(io.Discard, "", 0),
	}
	if d := env.Str("CHASH_CONFIG_DELIM"); d != "" {
		s.delim = d[0]
	}
	if env.Bool("CHASH_CONFIG_DEBUG") {
		s.logger = log.New(os.Stderr, "config: ", log.LstdFlags)
	}
	return s
}

// New returns an empty Config.
func New(opts ...Option) (*Config, error) {
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}

	var tableOpts []chash.Option
	if s.alloc != nil {
		tableOpts = append(tableOpts, chash.WithAllocator(s.alloc))
	}
	table, err := chash.New[string, string](s.buckets, chash.StringKey, tableOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create config table: %w", err)
	}

	return &Config{
		table:   table,
		delim:   s.delim,
		comment: s.comment,
		logger:  s.logger,
	}, nil
}

func (c *Config) closed() bool {
	return c == nil || c.table.BucketCount() == 0
}

// Delim returns the key/value separator.
func (c *Config) Delim() byte { return c.delim }

// Set stores value under key, replacing any value already stored there.
// Keys and values that Save could not write back in a loadable form are
// rejected with an error wrapping ErrSyntax: keys that are empty, start with
// the comment byte, or hold blanks, the delimiter, '"' or control characters,
// and values holding '"', '\n' or '\r'.
func (c *Config) Set(key, value string) error {
	if c.closed() {
		return ErrClosed
	}
	if msg := c.checkEntry(key, value); msg != "" {
		return fmt.Errorf("%w: %s", ErrSyntax, msg)
	}

	var node [1]*chashNode
	if c.table.Find(key, node[:]) > 0 {
		return node[0].Replace(value)
	}
	return c.table.Add(key, value)
}

// Get returns the value stored under key.
func (c *Config) Get(key string) (string, bool) {
	if c.closed() {
		return "", false
	}

	var node [1]*chashNode
	if c.table.Find(key, node[:]) == 0 {
		return "", false
	}
	return node[0].Value(), true
}

// Del removes key and reports whether it was present.
func (c *Config) Del(key string) bool {
	if c.closed() {
		return false
	}

	var node [1]*chashNode
	if c.table.Find(key, node[:]) == 0 {
		return false
	}
	return c.table.Del(node[0]) == nil
}

// Len returns the number of keys.
func (c *Config) Len() int {
	if c.closed() {
		return 0
	}
	return c.table.Len()
}

// Keys returns every key in storage order: bucket by bucket, newest first
// within a bucket. Save writes entries in the same order.
func (c *Config) Keys() []string {
	if c.closed() {
		return nil
	}

	keys := make([]string, 0, c.table.Len())
	c.table.ForEach(func(n *chashNode) bool {
		keys = append(keys, n.Key())
		return true
	})
	return keys
}

// Close releases the underlying table. A closed Config holds no keys.
func (c *Config) Close() {
	if c == nil {
		return
	}
	c.table.Destroy()
}
