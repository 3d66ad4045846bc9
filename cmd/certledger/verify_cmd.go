package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var server, certificateID string
	fs.StringVar(&server, "server", "http://localhost:8080", "service base url")
	fs.StringVar(&certificateID, "certificate-id", "", "certificate id to verify")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if certificateID == "" {
		fmt.Fprintln(os.Stderr, "verify requires --certificate-id")
		return 1
	}

	client := &http.Client{Timeout: 10 * time.Second}
	url := strings.TrimRight(server, "/") + "/v1/verify/" + certificateID
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read response: %v\n", err)
		return 1
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "server status %d: %s\n", resp.StatusCode, body)
		return 1
	}

	var result struct {
		Status       string `json:"status"`
		ChainChecked bool   `json:"chain_checked"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Fprintf(os.Stderr, "decode response: %v\n", err)
		return 1
	}
	fmt.Printf("status: %s\nchain_checked: %t\n", result.Status, result.ChainChecked)
	if result.Status != "verified" {
		return 2
	}
	return 0
}
