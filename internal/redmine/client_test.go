package redmine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeRedmine はtotal件のチケットを持つRedmineを模したサーバーを立てます。
// maxLimitよりも大きなlimitは切り詰めます。
func newFakeRedmine(t *testing.T, total, maxLimit int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/issues.json", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "secret", r.Header.Get("X-Redmine-API-Key"))
		assert.Equal(t, "sample", r.URL.Query().Get("project_id"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		limit = min(limit, maxLimit)

		// 逆順で返してもID順に並べ替えられることを確認する
		resp := listResponse{TotalCount: total, Offset: offset, Limit: limit}
		for i := min(offset+limit, total); i > offset; i-- {
			resp.Issues = append(resp.Issues, &Issue{ID: i, Subject: fmt.Sprintf("issue %d", i)})
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	mux.HandleFunc("/issues/7.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"issue":{"id":7,"subject":"seven","description":"see #1","status":{"id":1,"name":"New"},"created_on":"2024-01-02T03:04:05Z"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestListIssues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		total        int
		maxLimit     int
		wantRequests int32
	}{
		{name: "1ページに収まる", total: 30, maxLimit: 100, wantRequests: 1},
		{name: "0件", total: 0, maxLimit: 100, wantRequests: 1},
		{name: "複数ページ", total: 250, maxLimit: 100, wantRequests: 3},
		{name: "サーバー側でlimitが切り詰められる", total: 120, maxLimit: 25, wantRequests: 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, requests := newFakeRedmine(t, tt.total, tt.maxLimit)
			client := NewClient(srv.URL+"/", "secret", 3)

			issues, err := client.ListIssues(context.Background(), ListOptions{ProjectID: "sample"})
			require.NoError(t, err)
			require.Len(t, issues, tt.total)
			for i, issue := range issues {
				assert.Equal(t, i+1, issue.ID)
			}
			assert.Equal(t, tt.wantRequests, requests.Load())
		})
	}
}

func TestListIssuesStatusFilter(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		statuses []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		statuses = append(statuses, r.URL.Query().Get("status_id"))
		mu.Unlock()
		fmt.Fprint(w, `{"issues":[],"total_count":0,"offset":0,"limit":100}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "", 1)
	_, err := client.ListIssues(context.Background(), ListOptions{})
	require.NoError(t, err)
	_, err = client.ListIssues(context.Background(), ListOptions{All: true})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"open", "*"}, statuses)
}

func TestGetIssue(t *testing.T) {
	t.Parallel()

	srv, _ := newFakeRedmine(t, 0, 100)
	client := NewClient(srv.URL, "secret", 1)

	issue, err := client.GetIssue(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, issue.ID)
	assert.Equal(t, "seven", issue.Subject)
	assert.Equal(t, "see #1", issue.Description)
	assert.Equal(t, "New", issue.Status.Name)
	assert.Equal(t, 2024, issue.CreatedOn.Year())
	assert.Equal(t, srv.URL+"/issues/7", client.IssueURL(7))
}

func TestGetIssueNotFound(t *testing.T) {
	t.Parallel()

	srv, _ := newFakeRedmine(t, 0, 100)
	client := NewClient(srv.URL, "secret", 1)

	_, err := client.GetIssue(context.Background(), 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "#8")
}
