package config

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Load reads the config file at path. The file is held under a shared flock
// and memory-mapped read-only while it is parsed.
func Load(path string, opts ...Option) (*Config, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}

	if err := c.load(path); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Config) load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	fd := int(file.Fd())
	if err := unix.Flock(fd, unix.LOCK_SH); err != nil {
		return fmt.Errorf("failed to lock config: %w", err)
	}
	defer unix.Flock(fd, unix.LOCK_UN)

	fi, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if fi.Size() == 0 {
		return nil
	}

	data, err := unix.Mmap(fd, 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap failed: %w", err)
	}
	defer unix.Munmap(data)

	return c.Parse(data)
}

// Save writes every entry to path, one "key = value" line each, in the order
// returned by Keys. Values containing blanks or the delimiter are quoted.
// The file is written to a temporary sibling and renamed over path.
func (c *Config) Save(path string) error {
	if c.closed() {
		return ErrClosed
	}

	tmpPath := path + ".tmp"
	os.Remove(tmpPath)

	tmpFile, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := c.write(tmpFile); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (c *Config) write(file *os.File) error {
	w := bufio.NewWriter(file)

	var err error
	c.table.ForEach(func(n *chashNode) bool {
		format := "%s %c %s\n"
		if needsQuotes(n.Value(), c.delim) {
			format = "%s %c \"%s\"\n"
		}
		_, err = fmt.Fprintf(w, format, n.Key(), c.delim, n.Value())
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}
