package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const baseURL = "http://localhost:8080"

// Smoke-tests a running server end to end: ingest a batch twice (the counts
// must match across runs), run reasoning, and read the schema back.
func main() {
	time.Sleep(2 * time.Second)

	fmt.Println("Starting smoke test...")

	batch := map[string]interface{}{
		"entities": []map[string]interface{}{
			{"id": "s1", "type": "Contact", "label": "Alice", "properties": map[string]interface{}{"name": "Alice"}},
			{"id": "s2", "type": "Company", "label": "Acme", "properties": map[string]interface{}{"name": "Acme"}},
		},
		"relationships": []map[string]interface{}{
			{"sourceId": "s1", "targetId": "s2", "type": "WORKS_FOR"},
		},
	}

	fmt.Println("1. Ingesting batch...")
	first := send("POST", "/ingest", batch)
	if first == nil {
		fmt.Println("FAILED: ingest")
		os.Exit(1)
	}
	fmt.Println("PASSED: ingest")

	fmt.Println("2. Re-ingesting the same batch (must be a no-op)...")
	second := send("POST", "/ingest", batch)
	if second == nil {
		fmt.Println("FAILED: re-ingest")
		os.Exit(1)
	}
	if created, ok := second["entitiesCreated"].(float64); ok && created != 0 {
		fmt.Printf("FAILED: re-ingest created %v entities\n", created)
		os.Exit(1)
	}
	fmt.Println("PASSED: re-ingest")

	fmt.Println("3. Running reasoning...")
	if send("POST", "/reasoning/run", map[string]interface{}{}) == nil {
		fmt.Println("FAILED: reasoning")
		os.Exit(1)
	}
	fmt.Println("PASSED: reasoning")

	fmt.Println("4. Reading schema...")
	if send("GET", "/schema/labels", nil) == nil {
		fmt.Println("FAILED: schema")
		os.Exit(1)
	}
	fmt.Println("PASSED: schema")

	fmt.Println("Smoke test complete.")
}

func send(method, path string, payload interface{}) map[string]interface{} {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("marshal error: %v\n", err)
			return nil
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("request error: %v\n", err)
		return nil
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("http error: %v\n", err)
		return nil
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("status %d: %s\n", resp.StatusCode, data)
		return nil
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		fmt.Printf("decode error: %v\n", err)
		return nil
	}
	fmt.Printf("  -> %s\n", data)
	return out
}
