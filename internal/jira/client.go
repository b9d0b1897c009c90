package jira

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	jiralib "github.com/andygrunwald/go-jira"
	"github.com/qawatake/rm2jira/internal/config"
	"github.com/qawatake/rm2jira/internal/derrors"
	"github.com/qawatake/rm2jira/internal/verbose"
)

// Client はJIRA APIクライアントのラッパーです
type Client struct {
	jiraClient *jiralib.Client
	server     string
	projectKey string
}

// IssueInput は作成するチケットの内容です。DescriptionはJIRA記法です
type IssueInput struct {
	Summary     string
	Description string
	IssueType   string
	Labels      []string
}

// NewClient は新しいJIRA APIクライアントを作成します
func NewClient(cfg config.JiraConfig, apiToken string) (*Client, error) {
	if apiToken == "" {
		return nil, fmt.Errorf("JIRA_API_TOKEN環境変数が設定されていません")
	}

	var httpClient *http.Client
	// 認証タイプに応じたクライアントを作成
	switch cfg.AuthType {
	case "basic":
		tp := jiralib.BasicAuthTransport{
			Username: cfg.Login,
			Password: apiToken,
		}
		httpClient = tp.Client()
	case "bearer":
		tp := jiralib.BearerAuthTransport{
			Token: apiToken,
		}
		httpClient = tp.Client()
	default:
		return nil, fmt.Errorf("サポートされていない認証タイプです: %s", cfg.AuthType)
	}

	jiraClient, err := jiralib.NewClient(httpClient, cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("JIRAクライアントの作成に失敗しました: %w", err)
	}

	return &Client{
		jiraClient: jiraClient,
		server:     strings.TrimRight(cfg.Server, "/"),
		projectKey: cfg.ProjectKey,
	}, nil
}

// BrowseURL はチケットの画面のURLを返します
func (c *Client) BrowseURL(key string) string {
	return fmt.Sprintf("%s/browse/%s", c.server, key)
}

// CreateIssue は新しいJIRAチケットを作成し、そのキーを返します
func (c *Client) CreateIssue(ctx context.Context, in IssueInput) (_ string, err error) {
	defer derrors.Wrap(&err)

	fields := jiralib.IssueFields{
		Project: jiralib.Project{
			Key: c.projectKey,
		},
		Type: jiralib.IssueType{
			Name: in.IssueType,
		},
		Summary:     in.Summary,
		Description: in.Description,
		Labels:      in.Labels,
	}
	issue := jiralib.Issue{
		Fields: &fields,
	}

	verbose.Printf("JIRA Issue作成: %s (%s)\n", in.Summary, in.IssueType)

	created, response, err := c.jiraClient.Issue.CreateWithContext(ctx, &issue)
	if err != nil {
		// HTTP レスポンスボディを読み取って詳細なエラー情報を取得
		var errorDetails string
		if response != nil && response.Body != nil {
			bodyBytes, readErr := io.ReadAll(response.Body)
			if readErr == nil {
				errorDetails = string(bodyBytes)
			}
		}
		if errorDetails != "" {
			return "", fmt.Errorf("JIRAチケットの作成に失敗しました: %w\nレスポンス詳細: %s", err, errorDetails)
		}
		return "", fmt.Errorf("JIRAチケットの作成に失敗しました: %w", err)
	}
	if created == nil || created.Key == "" {
		return "", fmt.Errorf("JIRAチケットの作成結果にキーが含まれていません")
	}
	return created.Key, nil
}
