// Command uploaddata bulk-loads catalog activities from an NDJSON file
// by replaying each line against the activities API.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	file := flag.String("file", "", "path to an NDJSON file of activity definitions")
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the activities API")
	token := flag.String("token", os.Getenv("HOMECHILD_TOKEN"), "bearer token with the activities:write scope")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}
	if *token == "" {
		log.Fatal("provide a bearer token via -token or HOMECHILD_TOKEN")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *file, err)
	}
	defer f.Close()

	client := &http.Client{Timeout: 15 * time.Second}
	endpoint := strings.TrimRight(*baseURL, "/") + "/v1/activities"

	var uploaded, failed int
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		payload := bytes.TrimSpace(scanner.Bytes())
		if len(payload) == 0 {
			continue
		}
		if !json.Valid(payload) {
			log.Printf("line %d: skipping invalid JSON", line)
			failed++
			continue
		}

		if err := upload(client, endpoint, *token, payload); err != nil {
			log.Printf("line %d: %v", line, err)
			failed++
			continue
		}
		uploaded++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("failed reading %s: %v", *file, err)
	}

	log.Printf("upload complete (created=%d, failed=%d)", uploaded, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func upload(client *http.Client, endpoint, token string, payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
