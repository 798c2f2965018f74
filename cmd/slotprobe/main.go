package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// slotprobe fetches the raw availability JSON for a single date and prints
// it to stdout. Useful for inspecting upstream payloads without running a
// full scan.
func main() {
	if len(os.Args) < 2 {
		fmt.Println(`{"error": "Please provide a date (YYYY-MM-DD) as an argument"}`)
		return
	}
	date := os.Args[1]

	if _, err := time.Parse("2006-01-02", date); err != nil {
		fmt.Printf(`{"error": "invalid date %s, expected YYYY-MM-DD"}`+"\n", date)
		return
	}

	base := os.Getenv("SCHEDULER_API_URL")
	if base == "" {
		base = "https://ttp.cbp.dhs.gov/schedulerapi"
	}
	serviceName := os.Getenv("SCHEDULER_SERVICE_NAME")
	if serviceName == "" {
		serviceName = "Global Entry"
	}

	reqURL := fmt.Sprintf("%s/slots/asLocations?minimum=1&filterTimestampBy=on&timestamp=%s&serviceName=%s",
		base, date, url.QueryEscape(serviceName))

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(reqURL)
	if err != nil {
		fmt.Printf(`{"error": %q}`+"\n", err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf(`{"error": "scheduler API returned status %d"}`+"\n", resp.StatusCode)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf(`{"error": %q}`+"\n", err.Error())
		return
	}

	fmt.Println(string(body))
}
