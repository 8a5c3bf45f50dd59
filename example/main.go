package main

import (
	"fmt"
	"log"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/theflywheel/chash"
	"github.com/theflywheel/chash/config"
)

func main() {
	table, err := chash.New[string, string](config.DefaultBuckets, chash.StringKey)
	if err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}
	defer table.Destroy()

	fmt.Println("Table created with", table.BucketCount(), "buckets")

	if err := table.Add("host", "1.2.3.4"); err != nil {
		log.Fatalf("Failed to add host: %v", err)
	}
	if err := table.Add("host", "5.6.7.8"); err != nil {
		log.Fatalf("Failed to add host: %v", err)
	}

	out := make([]*chash.Node[string, string], 4)
	n := table.Find("host", out)
	fmt.Printf("host has %d values in bucket %d\n", n, table.BucketOf("host"))
	for i := 0; i < n && i < len(out); i++ {
		fmt.Printf("  %d: %s\n", i, out[i].Value())
	}

	if err := table.Del(out[0]); err != nil {
		log.Fatalf("Failed to delete: %v", err)
	}
	n = table.Find("host", out)
	fmt.Printf("After delete host has %d value(s): %s\n", n, out[0].Value())

	// Config round trip
	path := env.Str("CHASH_CONFIG_FILE", "example.conf")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		seed := "# example config\nhost = 1.2.3.4\nmotd = \"hello there\"\n"
		if err := os.WriteFile(path, []byte(seed), 0644); err != nil {
			log.Fatalf("Failed to create %s: %v", path, err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", path, err)
	}
	defer cfg.Close()

	if err := cfg.Set("host", "5.6.7.8"); err != nil {
		log.Fatalf("Failed to set host: %v", err)
	}
	for _, k := range cfg.Keys() {
		v, _ := cfg.Get(k)
		fmt.Printf("%s %c %s\n", k, cfg.Delim(), v)
	}

	if err := cfg.Save(path); err != nil {
		log.Fatalf("Failed to save %s: %v", path, err)
	}
	fmt.Println("Example completed successfully")
}
