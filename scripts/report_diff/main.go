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
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

var defaultTargets = []target{
	{Method: http.MethodGet, Path: "/api/v1/attendance/daily", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/attendance/daily?core_only=true", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/attendance/weekly", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/attendance/weekdays", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/attendance/divisions", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/attendance/employees", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/attendance/time-of-day"},
	{Method: http.MethodGet, Path: "/api/v1/attendance/audit"},
}

// Fields that differ between any two runs over the same data.
var volatileFields = map[string]struct{}{
	"meta":         {},
	"generated_at": {},
	"data_version": {},
	"loaded_at":    {},
}

type comparison struct {
	Target            target
	BaselineStatus    int
	CandidateStatus   int
	StatusMatch       bool
	BodyMatch         bool
	Error             error
	DurationBaseline  time.Duration
	DurationCandidate time.Duration
}

func main() {
	var (
		baseline    string
		candidate   string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&baseline, "baseline", "http://localhost:8080", "baseline attendance API base URL")
	flag.StringVar(&candidate, "candidate", "http://localhost:8081", "candidate attendance API base URL")
	flag.StringVar(&targetsPath, "targets", "", "optional JSON targets file")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		targets = loaded
	}

	client := &http.Client{Timeout: timeout}
	results := compareAll(client, baseline, candidate, targets)
	printReport(os.Stdout, results)

	breaking, optional := countDiffs(results)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compareAll(client *http.Client, baseline, candidate string, targets []target) []comparison {
	results := make([]comparison, 0, len(targets))
	for _, t := range targets {
		results = append(results, compareTarget(client, baseline, candidate, t))
	}
	return results
}

func countDiffs(results []comparison) (breaking, optional int) {
	for _, r := range results {
		if r.Error == nil && r.StatusMatch && r.BodyMatch {
			continue
		}
		if r.Target.Critical {
			breaking++
		} else {
			optional++
		}
	}
	return breaking, optional
}

func compareTarget(client *http.Client, baseline, candidate string, tgt target) comparison {
	comp := comparison{Target: tgt}

	baseBody, baseStatus, baseDur, err := fetch(client, baseline, tgt)
	comp.DurationBaseline = baseDur
	if err != nil {
		comp.Error = fmt.Errorf("baseline request failed: %w", err)
		return comp
	}
	candBody, candStatus, candDur, err := fetch(client, candidate, tgt)
	comp.DurationCandidate = candDur
	if err != nil {
		comp.Error = fmt.Errorf("candidate request failed: %w", err)
		return comp
	}

	comp.BaselineStatus = baseStatus
	comp.CandidateStatus = candStatus
	comp.StatusMatch = baseStatus == candStatus
	comp.BodyMatch = bodiesEqual(baseBody, candBody)
	return comp
}

func fetch(client *http.Client, base string, tgt target) ([]byte, int, time.Duration, error) {
	if client == nil {
		return nil, 0, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, time.Since(start), nil
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

// normalize drops volatile fields and folds integral floats so 50 and 50.0 compare equal.
func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k := range volatileFields {
			delete(val, k)
		}
		for k, v2 := range val {
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

func printReport(w io.Writer, results []comparison) {
	fmt.Fprintln(w, "Attendance Report Diff")
	fmt.Fprintln(w, "======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Fprintf(w, "  Baseline: %d (%s)\n", res.BaselineStatus, res.DurationBaseline)
		fmt.Fprintf(w, "  Candidate: %d (%s)\n", res.CandidateStatus, res.DurationCandidate)
		if res.Error != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Error)
		} else {
			fmt.Fprintf(w, "  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}
