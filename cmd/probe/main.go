// Command probe asks a backend which candidate routes it actually serves.
package main

import (
	"context"
	"delivery-marketplace/internal/config"
	"delivery-marketplace/internal/marketerrors"
	"delivery-marketplace/internal/operation"
	"delivery-marketplace/internal/resolver"
	"delivery-marketplace/utils"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"
)

var (
	baseURL   = flag.String("base", "", "API base URL (default API_BASE_URL)")
	token     = flag.String("token", "", "bearer token sent with every probe")
	jobID     = flag.Int64("job", 1, "job id used for routes that need one")
	endpoints = flag.String("endpoints", "", "YAML file with candidate overrides (default ENDPOINTS_FILE)")
	timeout   = flag.Duration("timeout", 0, "per-request timeout (default HTTP_TIMEOUT)")
)

// result is the outcome of one candidate
type result struct {
	op        operation.Operation
	candidate resolver.Candidate
	path      string
	status    int
	outcome   string
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	utils.SetLevel(cfg.LogLevel)
	if *baseURL != "" {
		cfg.APIBaseURL = *baseURL
	}
	if *endpoints != "" {
		cfg.EndpointsFile = *endpoints
	}
	if *timeout > 0 {
		cfg.HTTPTimeout = *timeout
	}

	chains := resolver.DefaultChains()
	if cfg.EndpointsFile != "" {
		if chains, err = resolver.LoadChains(cfg.EndpointsFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	transport, err := resolver.NewHTTPTransport(cfg.APIBaseURL, cfg.HTTPTimeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	results := probe(ctx, transport, chains, *token, *jobID)
	fmt.Printf("probing %s\n\n", cfg.APIBaseURL)
	printResults(os.Stdout, results)
}

// probe sends every candidate of every chain once, reads before writes as
// listed. Write candidates are sent with an empty body so nothing is created.
func probe(ctx context.Context, transport resolver.Transport, chains resolver.Chains, token string, jobID int64) []result {
	var results []result
	for _, op := range operation.All {
		req := operation.Request{Op: op, JobID: jobID}
		for _, c := range chains[op] {
			path, ok := c.Target(req)
			if !ok {
				results = append(results, result{op: op, candidate: c, path: c.Path, outcome: "skipped"})
				continue
			}

			var body any
			if c.Method != "GET" {
				body = map[string]any{}
			}
			resp, err := transport.Do(ctx, c.Method, path, token, body)
			results = append(results, classify(op, c, path, resp, err))
		}
	}
	return results
}

func classify(op operation.Operation, c resolver.Candidate, path string, resp operation.Response, err error) result {
	r := result{op: op, candidate: c, path: path, status: resp.Status}

	var apiErr *marketerrors.APIError
	if errors.As(err, &apiErr) {
		r.status = apiErr.Status
	}

	switch {
	case err == nil:
		r.outcome = "served"
	case errors.Is(err, marketerrors.ErrRouteNotFound):
		r.outcome = "absent"
	case errors.Is(err, marketerrors.ErrUnauthenticated):
		r.outcome = "exists (needs auth)"
	case errors.Is(err, marketerrors.ErrValidation):
		r.outcome = "exists (rejected empty body)"
	case errors.Is(err, marketerrors.ErrNetworkUnreachable):
		r.outcome = "unreachable"
	case errors.Is(err, marketerrors.ErrTimeout):
		r.outcome = "timeout"
	default:
		r.outcome = "error: " + err.Error()
	}
	return r
}

func printResults(out io.Writer, results []result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATION\tMETHOD\tPATH\tSTATUS\tOUTCOME")
	for _, r := range results {
		status := "-"
		if r.status != 0 {
			status = fmt.Sprint(r.status)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.op, r.candidate.Method, r.path, status, r.outcome)
	}
	_ = w.Flush()
}
