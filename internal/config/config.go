package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/qawatake/rm2jira/pkg/formatting"
	"github.com/spf13/viper"
)

// DefaultPath は --config を指定しなかったときに読み込む設定ファイルです
const DefaultPath = "rm2jira.yml"

const envPrefix = "RM2JIRA"

// ErrNotFound は設定ファイルが存在しないときのエラーです
var ErrNotFound = errors.New("設定ファイルが見つかりません")

// Config は設定ファイルの構造体です
type Config struct {
	Redmine   RedmineConfig   `mapstructure:"redmine"`
	Jira      JiraConfig      `mapstructure:"jira"`
	Migration MigrationConfig `mapstructure:"migration"`
}

type RedmineConfig struct {
	Server    string `mapstructure:"server"`
	ProjectID string `mapstructure:"project_id"`
}

type JiraConfig struct {
	Server     string `mapstructure:"server"`
	Login      string `mapstructure:"login"`
	AuthType   string `mapstructure:"auth_type"`
	ProjectKey string `mapstructure:"project_key"`
	IssueType  string `mapstructure:"issue_type"`
}

type MigrationConfig struct {
	// Directory は移行済みチケットの記録を置くディレクトリです
	Directory   string `mapstructure:"directory"`
	Wiki        bool   `mapstructure:"wiki"`
	All         bool   `mapstructure:"all"`
	Concurrency int    `mapstructure:"concurrency"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 環境変数での上書きを効かせるために全てのキーを登録しておく
	v.SetDefault("redmine.server", "")
	v.SetDefault("redmine.project_id", "")
	v.SetDefault("jira.server", "")
	v.SetDefault("jira.login", "")
	v.SetDefault("jira.auth_type", "basic")
	v.SetDefault("jira.project_key", "")
	v.SetDefault("jira.issue_type", "Task")
	v.SetDefault("migration.directory", "./migrated")
	v.SetDefault("migration.wiki", true)
	v.SetDefault("migration.all", false)
	v.SetDefault("migration.concurrency", 5)
	return v
}

// LoadConfig は設定ファイルを読み込みます
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	// 設定ファイルが存在するか確認
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパースに失敗しました: %w", err)
	}
	cfg.Redmine.Server = strings.TrimRight(cfg.Redmine.Server, "/")
	cfg.Jira.Server = strings.TrimRight(cfg.Jira.Server, "/")

	return &cfg, nil
}

// Save は設定をYAMLファイルに書き出します
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("redmine.server", c.Redmine.Server)
	v.Set("redmine.project_id", c.Redmine.ProjectID)
	v.Set("jira.server", c.Jira.Server)
	v.Set("jira.login", c.Jira.Login)
	v.Set("jira.auth_type", c.Jira.AuthType)
	v.Set("jira.project_key", c.Jira.ProjectKey)
	v.Set("jira.issue_type", c.Jira.IssueType)
	v.Set("migration.directory", c.Migration.Directory)
	v.Set("migration.wiki", c.Migration.Wiki)
	v.Set("migration.all", c.Migration.All)
	v.Set("migration.concurrency", c.Migration.Concurrency)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("設定ファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}

// ValidateRedmine は変換とRedmineからの取得に必要な項目をチェックします
func (c *Config) ValidateRedmine() error {
	if c.Redmine.Server == "" {
		return fmt.Errorf("redmine.serverが設定されていません")
	}
	u, err := url.Parse(c.Redmine.Server)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("redmine.serverは絶対URLである必要があります: %s", c.Redmine.Server)
	}
	if c.Redmine.ProjectID == "" {
		return fmt.Errorf("redmine.project_idが設定されていません")
	}
	return nil
}

// Validate は移行に必要な項目が揃っているかチェックします
func (c *Config) Validate() error {
	if err := c.ValidateRedmine(); err != nil {
		return err
	}
	if c.Jira.Server == "" {
		return fmt.Errorf("jira.serverが設定されていません")
	}
	if c.Jira.ProjectKey == "" {
		return fmt.Errorf("jira.project_keyが設定されていません")
	}
	switch c.Jira.AuthType {
	case "basic":
		if c.Jira.Login == "" {
			return fmt.Errorf("basic認証にはjira.loginが必要です")
		}
	case "bearer":
	default:
		return fmt.Errorf("サポートされていない認証タイプです: %s", c.Jira.AuthType)
	}
	if c.Migration.Concurrency < 1 {
		return fmt.Errorf("migration.concurrencyは1以上である必要があります: %d", c.Migration.Concurrency)
	}
	return nil
}

// Formatting は変換パイプラインに渡す設定を作ります
func (c *Config) Formatting() formatting.Config {
	return formatting.NewConfig(c.Redmine.Server, c.Redmine.ProjectID, c.Migration.Wiki, c.Migration.All)
}

// LoadDotEnv はAPIキーなどを書いた.envファイルを環境変数に読み込みます。
// ファイルがなければ何もしません。既に設定されている環境変数は上書きしません
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%sの読み込みに失敗しました: %w", path, err)
	}
	return nil
}

// RedmineAPIKey は環境変数からRedmineのAPIキーを取得します
func RedmineAPIKey() string {
	return os.Getenv("REDMINE_API_KEY")
}

// JiraAPIToken は環境変数からJIRAのAPIトークンを取得します
func JiraAPIToken() string {
	return os.Getenv("JIRA_API_TOKEN")
}
