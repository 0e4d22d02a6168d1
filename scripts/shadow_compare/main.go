// Command shadow_compare replays read endpoints against both the legacy
// grading plugin and this API and reports response differences. Used to
// verify parity before pointing the panel at the Go backend.
package main

import (
	"encoding/json"
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

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

type result struct {
	target        target
	goStatus      int
	legacyStatus  int
	bodyMatch     bool
	err           error
	goLatency     time.Duration
	legacyLatency time.Duration
}

func (r result) matched() bool {
	return r.err == nil && r.goStatus == r.legacyStatus && r.bodyMatch
}

type runner struct {
	client     *http.Client
	goBase     string
	legacyBase string
	token      string
	ignoreKeys map[string]struct{}
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		token       string
		ignore      string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8000", "Legacy grading plugin base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON targets file")
	flag.StringVar(&token, "token", "", "Bearer token sent with every request")
	flag.StringVar(&ignore, "ignore", "timemodified,timecreated", "Comma-separated JSON keys excluded from body comparison")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	r := &runner{
		client:     &http.Client{Timeout: timeout},
		goBase:     goBase,
		legacyBase: legacyBase,
		token:      token,
		ignoreKeys: splitKeys(ignore),
	}

	var breaking, optional int
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, t := range targets {
		res := r.compare(t)
		printResult(res)
		if !res.matched() {
			if t.Critical {
				breaking++
			} else {
				optional++
			}
		}
	}

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
	var f targetsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return f.Targets, nil
}

func splitKeys(raw string) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

func (r *runner) compare(t target) result {
	res := result{target: t}

	goStatus, goBody, goDur, err := r.fetch(r.goBase, t)
	if err != nil {
		res.err = fmt.Errorf("go request failed: %w", err)
		return res
	}
	legacyStatus, legacyBody, legacyDur, err := r.fetch(r.legacyBase, t)
	if err != nil {
		res.err = fmt.Errorf("legacy request failed: %w", err)
		return res
	}

	res.goStatus, res.goLatency = goStatus, goDur
	res.legacyStatus, res.legacyLatency = legacyStatus, legacyDur
	res.bodyMatch = r.bodiesEqual(goBody, legacyBody)
	return res
}

func (r *runner) fetch(base string, t target) (int, []byte, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(t.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := t.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// bodiesEqual compares two JSON bodies after dropping ignored keys and
// collapsing whole-number floats, so timestamp churn and numeric
// encoding differences don't count as drift.
func (r *runner) bodiesEqual(a, b []byte) bool {
	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return strings.TrimSpace(string(a)) == strings.TrimSpace(string(b))
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	aj = r.normalize(aj)
	bj = r.normalize(bj)
	return reflect.DeepEqual(aj, bj)
}

func (r *runner) normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, inner := range val {
			if _, skip := r.ignoreKeys[k]; skip {
				delete(val, k)
				continue
			}
			val[k] = r.normalize(inner)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = r.normalize(inner)
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
	}
	return v
}

func printResult(res result) {
	status := "OK"
	switch {
	case res.err != nil:
		status = "ERROR"
	case !res.matched():
		status = "DIFF"
	}
	fmt.Printf("[%s] %s %s\n", status, res.target.Method, res.target.Path)
	if res.err != nil {
		fmt.Printf("  Error: %v\n", res.err)
		return
	}
	fmt.Printf("  Go: %d (%s) | Legacy: %d (%s)\n", res.goStatus, res.goLatency, res.legacyStatus, res.legacyLatency)
	fmt.Printf("  Body match: %t | Critical: %t\n", res.bodyMatch, res.target.Critical)
}
