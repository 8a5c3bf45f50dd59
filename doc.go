/*
Package chash provides a generic hash table with a fixed number of buckets and
separate chaining.

A Table is created with a bucket count and a key kind, and keeps both for its
whole lifetime; it never resizes or rehashes. Each bucket is a chain of nodes
ordered newest first.

Basic usage:

	import "github.com/theflywheel/chash"

	// A string-keyed table with 37 buckets
	t, err := chash.New[string, string](37, chash.StringKey)
	if err != nil {
		log.Fatal(err)
	}
	defer t.Destroy()

	// Insert data
	if err := t.Add("host", "1.2.3.4"); err != nil {
		log.Fatal(err)
	}

	// Retrieve data
	var out [4]*chash.Node[string, string]
	n := t.Find("host", out[:])
	for i := 0; i < n && i < len(out); i++ {
		fmt.Println(out[i].Value())
	}

Features:

  - Integer keys hashed multiplicatively with 0x9e370001
  - String keys hashed with a base-131 polynomial, or with xxhash64 (DigestKey)
  - Duplicate keys are kept: Add never replaces, Find reports every match
  - Find returns the total match count even when the output slice is shorter
  - Deleting a node twice fails with ErrUnlinked instead of corrupting a chain
  - Pluggable Allocator for memory accounting and bounded tables

Keys are unique only if the caller makes them so. The usual pattern is
find-then-replace:

	var out [1]*chash.Node[string, string]
	if t.Find(key, out[:]) > 0 {
		err = out[0].Replace(value)
	} else {
		err = t.Add(key, value)
	}

Values of type []byte are copied on insert, as are values with a
Clone() method returning their own type. Other values are copied by assignment.
*/
package chash
