package resolver

import (
	"delivery-marketplace/internal/operation"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Candidate is one guessed route for an operation. "{id}" in Path is
// replaced by the request's job id; Query names the query parameter the
// job id is sent in. FilterBySender keeps only the owner's records of a
// list answer.
type Candidate struct {
	Method         string `yaml:"method"`
	Path           string `yaml:"path"`
	Query          string `yaml:"query,omitempty"`
	FilterBySender bool   `yaml:"filter_by_sender,omitempty"`
}

// Target builds the relative URL for req. It reports false when the
// candidate needs a job id the request does not carry.
func (c Candidate) Target(req operation.Request) (string, bool) {
	id := strconv.FormatInt(req.JobID, 10)

	path := c.Path
	if strings.Contains(path, "{id}") {
		if req.JobID == 0 {
			return "", false
		}
		path = strings.ReplaceAll(path, "{id}", id)
	}
	if c.Query != "" && req.JobID != 0 {
		path += "?" + url.Values{c.Query: {id}}.Encode()
	}
	return path, true
}

func (c Candidate) String() string {
	return c.Method + " " + c.Path
}

// Chains maps every operation to its candidates in priority order
type Chains map[operation.Operation][]Candidate

// DefaultChains returns the route variants known across backend generations
func DefaultChains() Chains {
	get := func(path string) Candidate { return Candidate{Method: http.MethodGet, Path: path} }
	post := func(path string) Candidate { return Candidate{Method: http.MethodPost, Path: path} }
	put := func(path string) Candidate { return Candidate{Method: http.MethodPut, Path: path} }

	return Chains{
		operation.Login:       {post("auth/login/"), post("accounts/token/"), post("token/")},
		operation.Register:    {post("accounts/register/")},
		operation.TokenObtain: {post("accounts/token/")},
		operation.GetProfile: {
			get("auth/profile/"), get("accounts/profile/"), get("profile/"), get("user/"),
		},
		operation.UpdateProfile: {
			put("auth/profile/"), put("accounts/profile/"), put("profile/"),
		},
		operation.ListMyJobs: {
			get("jobs/my-jobs/"),
			{Method: http.MethodGet, Path: "jobs/", FilterBySender: true},
			{Method: http.MethodGet, Path: "job/", FilterBySender: true},
		},
		operation.ListJobs:  {get("jobs/"), get("job/")},
		operation.GetJob:    {get("jobs/{id}/"), get("job/{id}/")},
		operation.CreateJob: {post("jobs/")},
		operation.ListBids: {
			{Method: http.MethodGet, Path: "bids/", Query: "job"},
			{Method: http.MethodGet, Path: "bid/", Query: "job"},
			get("jobs/{id}/bids/"),
		},
		operation.CreateBid: {post("bids/"), post("bid/")},
		operation.ListMessages: {
			{Method: http.MethodGet, Path: "chats/", Query: "job_id"},
			{Method: http.MethodGet, Path: "chat/", Query: "job_id"},
			{Method: http.MethodGet, Path: "messages/", Query: "job"},
			get("jobs/{id}/messages/"),
		},
		operation.CreateMessage: {post("chats/"), post("chat/"), post("messages/")},
	}
}

// LoadChains reads per-operation overrides from a YAML file and lays them
// over the defaults. Operations missing from the file keep their defaults.
//
//	login:
//	  - method: POST
//	    path: api-token-auth/
func LoadChains(filename string) (Chains, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load chains: %w", err)
	}

	var overrides map[string][]Candidate
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("load chains %s: %w", filename, err)
	}

	chains := DefaultChains()
	for name, candidates := range overrides {
		op := operation.Operation(name)
		if _, known := chains[op]; !known {
			return nil, fmt.Errorf("load chains %s: unknown operation %q", filename, name)
		}
		for i, c := range candidates {
			if c.Path == "" {
				return nil, fmt.Errorf("load chains %s: %s candidate %d has no path", filename, name, i)
			}
			if c.Method == "" {
				candidates[i].Method = http.MethodGet
			}
			candidates[i].Method = strings.ToUpper(candidates[i].Method)
		}
		chains[op] = candidates
	}
	return chains, nil
}
