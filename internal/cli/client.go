package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/apex-citadels/citadel/internal/domain"
)

// ─── Daemon Client Helpers ──────────────────────────────────────────────────

var httpClient = &http.Client{Timeout: 10 * time.Second}

func getJSON(addr, path string, out interface{}) error {
	resp, err := httpClient.Get(addr + path)
	if err != nil {
		return fmt.Errorf("is the daemon running? (%w)", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func postJSON(addr, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := httpClient.Post(addr+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("is the daemon running? (%w)", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseCostArg parses "stone=100,gold=5" into a wire cost map.
func parseCostArg(arg string) (map[string]int64, error) {
	cost := make(map[string]int64)
	for _, pair := range strings.Split(arg, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, amount, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("expected RESOURCE=AMOUNT, got %q", pair)
		}
		r, err := domain.ParseResource(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("unknown resource %q", name)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid amount %q for %s", amount, r)
		}
		cost[r.String()] = n
	}
	if len(cost) == 0 {
		return nil, fmt.Errorf("empty cost")
	}
	return cost, nil
}
