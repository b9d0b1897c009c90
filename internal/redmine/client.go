package redmine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/k1LoW/errors"
	"github.com/qawatake/rm2jira/internal/derrors"
	"github.com/qawatake/rm2jira/internal/verbose"
	"github.com/sourcegraph/conc/pool"
)

// 1リクエストあたりの最大件数。Redmineのデフォルト上限に合わせる
const pageSize = 100

// 安全のためのリクエスト数の上限
const limitRequestCount = 1000

// Client はRedmine REST APIのクライアントです
type Client struct {
	server      string
	apiKey      string
	concurrency int
	httpClient  *http.Client
}

// NewClient は新しいRedmine APIクライアントを作成します
func NewClient(server, apiKey string, concurrency int) *Client {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Client{
		server:      strings.TrimRight(server, "/"),
		apiKey:      apiKey,
		concurrency: concurrency,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type NamedID struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Issue はRedmineのチケットです
type Issue struct {
	ID          int       `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Project     NamedID   `json:"project"`
	Tracker     NamedID   `json:"tracker"`
	Status      NamedID   `json:"status"`
	Priority    NamedID   `json:"priority"`
	Author      NamedID   `json:"author"`
	AssignedTo  *NamedID  `json:"assigned_to"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

// ListOptions はチケット一覧の取得条件です
type ListOptions struct {
	ProjectID string
	// All がtrueなら終了済みのチケットも含めます
	All bool
}

type listResponse struct {
	Issues     []*Issue `json:"issues"`
	TotalCount int      `json:"total_count"`
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
}

// IssueURL はチケットの画面のURLを返します
func (c *Client) IssueURL(id int) string {
	return fmt.Sprintf("%s/issues/%d", c.server, id)
}

// GetIssue は1件のチケットを取得します
func (c *Client) GetIssue(ctx context.Context, id int) (_ *Issue, err error) {
	defer derrors.Wrapf(&err, "Redmineチケット #%d の取得", id)

	var result struct {
		Issue *Issue `json:"issue"`
	}
	if err := c.get(ctx, fmt.Sprintf("/issues/%d.json", id), nil, &result); err != nil {
		return nil, err
	}
	if result.Issue == nil {
		return nil, fmt.Errorf("Redmineチケットが見つかりません: #%d", id)
	}
	return result.Issue, nil
}

// ListIssues はプロジェクトのチケットを全ページ取得してID順に返します
func (c *Client) ListIssues(ctx context.Context, opts ListOptions) (_ []*Issue, err error) {
	defer derrors.Wrap(&err)

	first, err := c.listPage(ctx, opts, 0, pageSize)
	if err != nil {
		return nil, err
	}
	issues := make([]*Issue, 0, first.TotalCount)
	issues = append(issues, first.Issues...)
	if first.TotalCount <= len(first.Issues) {
		sortByID(issues)
		return issues, nil
	}

	// サーバー側でlimitが切り詰められることがあるので実際の値を使う
	limit := first.Limit
	if limit <= 0 {
		limit = len(first.Issues)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("Redmineのページングに失敗しました: total=%d", first.TotalCount)
	}

	p := pool.NewWithResults[[]*Issue]().WithContext(ctx).WithMaxGoroutines(c.concurrency)
	requestCount := 0
	for offset := len(first.Issues); offset < first.TotalCount; offset += limit {
		if requestCount >= limitRequestCount {
			break
		}
		requestCount++
		p.Go(func(ctx context.Context) ([]*Issue, error) {
			verbose.Printf("Redmine: offset=%d limit=%d\n", offset, limit)
			page, err := c.listPage(ctx, opts, offset, limit)
			if err != nil {
				return nil, err
			}
			return page.Issues, nil
		})
	}
	pages, err := p.Wait()
	if err != nil {
		return nil, err
	}
	issues = append(issues, slices.Concat(pages...)...)
	sortByID(issues)
	return issues, nil
}

func (c *Client) listPage(ctx context.Context, opts ListOptions, offset, limit int) (*listResponse, error) {
	q := url.Values{}
	if opts.ProjectID != "" {
		q.Set("project_id", opts.ProjectID)
	}
	if opts.All {
		q.Set("status_id", "*")
	} else {
		q.Set("status_id", "open")
	}
	q.Set("sort", "id")
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var result listResponse
	if err := c.get(ctx, "/issues.json", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	endpoint := c.server + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Redmine-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("Redmine APIリクエストが失敗しました: " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func sortByID(issues []*Issue) {
	slices.SortFunc(issues, func(a, b *Issue) int { return a.ID - b.ID })
}
