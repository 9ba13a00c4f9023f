// Command ensure-config writes the default slogger config document if none
// exists at the given path. Existing documents are left untouched.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/slogger-dev/slogger/internal/configfile"
)

func main() {
	path := flag.String("config", "config.json", "path to the config document")
	flag.Parse()

	if _, err := os.Stat(*path); err == nil {
		fmt.Printf("Config already exists: %s\n", *path)
		return
	}

	if err := configfile.Write(*path, configfile.Default()); err != nil {
		fmt.Fprintf(os.Stderr, "write config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created config: %s\n", *path)
}
