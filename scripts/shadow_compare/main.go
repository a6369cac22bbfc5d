// Command shadow_compare replays read-only scheduling requests against the
// legacy LMS plugin and the new API and reports response diffs. Run it during
// cutover with a week of real course IDs in the probes file.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type probe struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type probeFile struct {
	Probes []probe `json:"probes"`
}

type result struct {
	Probe          probe
	LegacyStatus   int
	APIStatus      int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationAPI    time.Duration
	DurationLegacy time.Duration
}

// volatileKeys are response fields expected to differ between the two stacks
// and stripped before comparison.
var volatileKeys = map[string]bool{
	"generated_at": true,
	"request_id":   true,
}

func main() {
	var (
		apiBase    string
		legacyBase string
		probesPath string
		authToken  string
		timeout    time.Duration
	)

	flag.StringVar(&apiBase, "api-base", "http://localhost:8080", "new API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8000", "legacy plugin base URL")
	flag.StringVar(&probesPath, "probes", filepath.Join("scripts", "shadow_compare", "probes.json"), "path to JSON probes file")
	flag.StringVar(&authToken, "token", os.Getenv("SHADOW_COMPARE_TOKEN"), "bearer token sent to both stacks")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	probes, err := loadProbes(probesPath)
	if err != nil {
		log.Fatalf("failed to load probes: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		results      []result
		breaking     int
		optionalDiff int
	)

	for _, p := range probes {
		res := compareProbe(client, apiBase, legacyBase, authToken, p)
		if res.Error != nil {
			if p.Critical {
				breaking++
			}
		} else {
			if !res.StatusMatch || !res.BodyMatch {
				if p.Critical {
					breaking++
				} else {
					optionalDiff++
				}
			}
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadProbes(path string) ([]probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf probeFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, err
	}
	if len(pf.Probes) == 0 {
		return nil, fmt.Errorf("no probes defined in %s", path)
	}
	for _, p := range pf.Probes {
		if !strings.EqualFold(strings.TrimSpace(p.Method), http.MethodGet) && p.Method != "" {
			return nil, fmt.Errorf("probe %s %s: only GET probes are safe to replay", p.Method, p.Path)
		}
	}
	return pf.Probes, nil
}

func compareProbe(client *http.Client, apiBase, legacyBase, token string, p probe) result {
	res := result{Probe: p}
	apiResp, apiDur, apiErr := performRequest(client, apiBase, token, p)
	legacyResp, legacyDur, legacyErr := performRequest(client, legacyBase, token, p)
	res.DurationAPI = apiDur
	res.DurationLegacy = legacyDur

	if apiErr != nil {
		res.Error = fmt.Errorf("api request failed: %w", apiErr)
		return res
	}
	if legacyErr != nil {
		res.Error = fmt.Errorf("legacy request failed: %w", legacyErr)
		return res
	}

	res.APIStatus = apiResp.StatusCode
	res.LegacyStatus = legacyResp.StatusCode
	res.StatusMatch = res.APIStatus == res.LegacyStatus

	defer apiResp.Body.Close()
	defer legacyResp.Body.Close()

	apiBody, err := io.ReadAll(apiResp.Body)
	if err != nil {
		res.Error = fmt.Errorf("read api body: %w", err)
		return res
	}
	legacyBody, err := io.ReadAll(legacyResp.Body)
	if err != nil {
		res.Error = fmt.Errorf("read legacy body: %w", err)
		return res
	}

	res.BodyMatch = bodiesEqual(apiBody, legacyBody)

	return res
}

func performRequest(client *http.Client, base, token string, p probe) (*http.Response, time.Duration, error) {
	if client == nil {
		return nil, 0, errors.New("nil client")
	}
	path := p.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := strings.TrimRight(base, "/") + path

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			if volatileKeys[k] {
				delete(val, k)
				continue
			}
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func printReport(results []result) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] GET %s\n", status, res.Probe.Path)
		fmt.Printf("  API Status: %d (%s)\n", res.APIStatus, res.DurationAPI)
		fmt.Printf("  Legacy Status: %d (%s)\n", res.LegacyStatus, res.DurationLegacy)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Probe.Critical)
		}
	}
}
