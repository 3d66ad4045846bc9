// certledger is the operator CLI: compute content hashes, mint or inspect
// certificate ids, and query a running service's verify endpoint.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "hash":
		return runHash(args[2:])
	case "id":
		if len(args) >= 3 {
			switch args[2] {
			case "new":
				return runIDNew(args[3:])
			case "inspect":
				return runIDInspect(args[3:])
			}
		}
	case "verify":
		return runVerify(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "certledger"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s hash --certificate-id <id> --recipient <name> --course <name> --institution <name> --issuer <name> --issue-date <YYYY-MM-DD>\n", name)
	fmt.Fprintf(os.Stderr, "  %s id new\n", name)
	fmt.Fprintf(os.Stderr, "  %s id inspect <certificate-id>\n", name)
	fmt.Fprintf(os.Stderr, "  %s verify --server <base-url> --certificate-id <id>\n", name)
}
