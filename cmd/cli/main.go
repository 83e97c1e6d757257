package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Tiny helper for talking to a running daemon: `cli add` prompts for a
// site, `cli list` prints the current status of every asset.
func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	cmd := "add"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "add":
		addAsset(api)
	case "list":
		listAssets(api)
	default:
		fmt.Fprintln(os.Stderr, "usage: cli [add|list]")
		os.Exit(2)
	}
}

func addAsset(api string) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Name (e.g. My Website): ")
	name, _ := reader.ReadString('\n')
	fmt.Print("URL (e.g. https://tabbythecat.com): ")
	raw, _ := reader.ReadString('\n')

	name = strings.TrimSpace(name)
	raw = strings.TrimSpace(raw)
	if name == "" || raw == "" {
		fmt.Println("Name and URL are required.")
		return
	}

	body, _ := json.Marshal(map[string]any{
		"name": name, "url": raw, "show_in_menubar": true,
	})
	resp, err := http.Post(api+"/api/assets", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fmt.Println("Added! Run `cli list` to see its status.")
	} else {
		fmt.Println("API returned status:", resp.Status)
	}
}

func listAssets(api string) {
	resp, err := http.Get(api + "/api/assets")
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	var assets []struct {
		Name   string `json:"name"`
		URL    string `json:"url"`
		Status string `json:"status"`
		Code   int    `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
		fmt.Println("Bad response:", err)
		return
	}
	if len(assets) == 0 {
		fmt.Println("No assets yet.")
		return
	}
	for _, a := range assets {
		marker := "?"
		switch a.Status {
		case "Up":
			marker = "✔"
		case "Down":
			marker = "✖"
		}
		fmt.Printf("%s %-20s %-3d %s\n", marker, a.Name, a.Code, a.URL)
	}
}
