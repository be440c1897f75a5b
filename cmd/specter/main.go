// Command specter wraps the SPECTER core: key generation, name
// resolution, payment creation, announcement scanning, a registry server,
// and benchmarks.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "generate":
		err = generateCommand(os.Args[2:])
	case "resolve":
		err = resolveCommand(os.Args[2:])
	case "create":
		err = createCommand(os.Args[2:])
	case "scan":
		err = scanCommand(os.Args[2:])
	case "serve":
		err = serveCommand(os.Args[2:])
	case "bench":
		err = benchCommand(os.Args[2:])
	case "version":
		fmt.Println("specter " + version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// version is overridable at build time via -ldflags "-X main.version=...".
var version = "dev"

func printUsage() {
	fmt.Println(`specter - post-quantum stealth address tool

USAGE:
    specter <command> [options]

COMMANDS:
    generate  Generate a wallet and print its meta-address
    resolve   Resolve a name to a meta-address
    create    Create a stealth payment to a recipient
    scan      Scan a registry for payments addressed to a wallet
    serve     Run a registry HTTP server
    bench     Benchmark the cryptographic core
    version   Print version information
    help      Show this help message

EXAMPLES:
    specter generate --out wallet.json
    specter resolve --names names.json alice.eth
    specter create --registry registry.bin 0x<meta-hex>
    specter scan --keys wallet.json --registry registry.bin
    specter serve --port 8080 --registry registry.bin
    specter bench --count 100`)
}
