package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const baseURL = "http://localhost:8080"

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	// 1. Health Check
	checkEndpoint("GET", "/health", 200)

	userID := "demo-user"

	// 2. Portfolio summary, default display currency
	checkEndpoint("GET", "/portfolio/"+userID, 200)

	// 3. Portfolio summary in USD
	checkEndpoint("GET", "/portfolio/"+userID+"?currency=USD", 200)

	// 4. Dashboard with persisted thresholds
	checkEndpoint("GET", "/dashboard/"+userID, 200)

	// 5. Dashboard with overrides
	checkEndpoint("GET", "/dashboard/"+userID+"?deviation=2.5&stale_days=1", 200)

	// 6. Bad override rejected
	checkEndpoint("GET", "/dashboard/"+userID+"?deviation=nope", 400)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(method, path string, expectedStatus int) {
	fmt.Printf("Testing %s %s...\n", method, path)

	req, _ := http.NewRequest(method, baseURL+path, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	fmt.Printf("Response: %s\n", string(respBody))
}
