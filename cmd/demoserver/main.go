// Command demoserver serves the phishing lab fixture pages.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/raysh454/phishscan/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()
	flag.StringVar(&cfg.Host, "host", cfg.Host, "Interface to bind")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	flag.Parse()

	if err := demoserver.NewDemoServer(cfg).Start(); err != nil {
		fmt.Fprintf(os.Stderr, "demoserver: %v\n", err)
		os.Exit(1)
	}
}
