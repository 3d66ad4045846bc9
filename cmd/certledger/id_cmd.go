package main

import (
	"fmt"
	"os"
	"time"

	"certledger/pkg/certid"
)

func runIDNew(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "id new takes no arguments")
		return 1
	}
	fmt.Println(certid.New())
	return 0
}

func runIDInspect(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "id inspect takes exactly one certificate id")
		return 1
	}
	id := args[0]
	if !certid.Valid(id) {
		fmt.Fprintf(os.Stderr, "malformed certificate id: %s\n", id)
		return 1
	}
	issued, err := certid.IssuedAt(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inspect id: %v\n", err)
		return 1
	}
	fmt.Printf("id: %s\nissued_at: %s\n", id, issued.UTC().Format(time.RFC3339))
	return 0
}
