// Command railcache drives a cache through the railcache adapter from the shell.
//
//	railcache --servers 127.0.0.1:11211 set greeting hello --ttl 1h
//	railcache --servers 127.0.0.1:11211 get greeting
//	RAILCACHE_NAMESPACE=app railcache --config railcache.yaml fetch report "computed later"
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
