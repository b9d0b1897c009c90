package migrate

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/qawatake/rm2jira/internal/derrors"
	"github.com/qawatake/rm2jira/internal/jira"
	"github.com/qawatake/rm2jira/internal/ledger"
	"github.com/qawatake/rm2jira/internal/redmine"
	"github.com/qawatake/rm2jira/internal/verbose"
	"github.com/qawatake/rm2jira/pkg/formatting"
	"github.com/sourcegraph/conc/pool"
)

// Source は移行元のチケットを取得します
type Source interface {
	ListIssues(ctx context.Context, opts redmine.ListOptions) ([]*redmine.Issue, error)
	IssueURL(id int) string
}

// Creator は移行先にチケットを作成し、作成したチケットのキーを返します
type Creator interface {
	CreateIssue(ctx context.Context, in jira.IssueInput) (string, error)
}

// Filter は変換後の説明文にさらに手を加えます。外部コマンドの拡張がこれを満たします
type Filter interface {
	Filter(ctx context.Context, input string) (string, error)
}

type Migrator struct {
	Source     Source
	Dest       Creator
	LedgerDir  string
	Formatting formatting.Config
	Filters    []Filter
	IssueType  string
	Labels     []string
	// Concurrency はJIRAへの同時リクエスト数です
	Concurrency int
	// Now は記録する移行日時を返します。nilならtime.Nowを使います
	Now func() time.Time
}

// Item は移行対象のチケット1件です
type Item struct {
	Issue       *redmine.Issue
	Description string
	// Existing はすでに移行済みの場合の記録です
	Existing *ledger.Record
}

// Skipped は移行済みのため作成しないかどうかを返します
func (i Item) Skipped() bool {
	return i.Existing != nil
}

// Result は移行の結果です
type Result struct {
	Created []*ledger.Record
	Skipped int
	Failed  int
	// Planned はdry-runで作成を見送った件数です
	Planned int
}

// Plan は移行元のチケットを取得し、説明文を変換した移行計画を返します
func (m *Migrator) Plan(ctx context.Context, opts redmine.ListOptions) (_ []Item, err error) {
	defer derrors.Wrap(&err)

	done, err := ledger.Load(m.LedgerDir)
	if err != nil {
		return nil, fmt.Errorf("移行記録の読み込みに失敗しました: %w", err)
	}

	issues, err := m.Source.ListIssues(ctx, opts)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(issues))
	for _, issue := range issues {
		item := Item{Issue: issue, Existing: done[issue.ID]}
		if !item.Skipped() {
			desc, err := m.Describe(ctx, issue.Description)
			if err != nil {
				return nil, fmt.Errorf("チケット #%d の変換に失敗しました: %w", issue.ID, err)
			}
			item.Description = desc
		}
		items = append(items, item)
	}
	verbose.Printf("移行対象: %d件 (移行済み %d件)\n", len(items), len(done))
	return items, nil
}

// Describe はRedmineの記法のテキストをJIRA記法に変換し、フィルタを順に適用します
func (m *Migrator) Describe(ctx context.Context, text string) (string, error) {
	desc := formatting.Convert(text, m.Formatting)
	for _, f := range m.Filters {
		var err error
		desc, err = f.Filter(ctx, desc)
		if err != nil {
			return "", err
		}
	}
	return desc, nil
}

type outcome struct {
	record  *ledger.Record
	skipped bool
	planned bool
	err     error
}

// Run は計画に沿ってJIRAにチケットを作成し、移行記録を保存します。
// 一部のチケットで失敗しても残りの処理は続け、エラーはまとめて返します。
func (m *Migrator) Run(ctx context.Context, items []Item, dryRun bool) (Result, error) {
	concurrency := m.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	p := pool.NewWithResults[outcome]().WithMaxGoroutines(concurrency)
	for _, item := range items {
		p.Go(func() outcome {
			return m.migrateOne(ctx, item, dryRun)
		})
	}
	outcomes := p.Wait()

	var (
		result Result
		errs   []error
	)
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			result.Failed++
			errs = append(errs, o.err)
		case o.skipped:
			result.Skipped++
		case o.planned:
			result.Planned++
		default:
			result.Created = append(result.Created, o.record)
		}
	}
	slices.SortFunc(result.Created, func(a, b *ledger.Record) int {
		return cmp.Compare(a.RedmineID, b.RedmineID)
	})
	return result, errors.Join(errs...)
}

func (m *Migrator) migrateOne(ctx context.Context, item Item, dryRun bool) outcome {
	issue := item.Issue
	if item.Skipped() {
		verbose.Printf("#%d は %s に移行済みのためスキップします\n", issue.ID, item.Existing.JiraKey)
		return outcome{skipped: true}
	}
	if dryRun {
		return outcome{planned: true}
	}
	if err := ctx.Err(); err != nil {
		return outcome{err: fmt.Errorf("#%d: %w", issue.ID, err)}
	}

	key, err := m.Dest.CreateIssue(ctx, jira.IssueInput{
		Summary:     issue.Subject,
		Description: item.Description,
		IssueType:   m.IssueType,
		Labels:      m.Labels,
	})
	if err != nil {
		return outcome{err: fmt.Errorf("#%d: %w", issue.ID, err)}
	}
	verbose.Printf("#%d -> %s\n", issue.ID, key)

	record := &ledger.Record{
		RedmineID:  issue.ID,
		RedmineURL: m.Source.IssueURL(issue.ID),
		JiraKey:    key,
		Subject:    issue.Subject,
		MigratedAt: m.now(),
		Body:       item.Description,
	}
	if _, err := record.SaveToFile(m.LedgerDir); err != nil {
		// JIRA側は作成済みなので記録できなかったことが分かるようにキーを含める
		return outcome{err: fmt.Errorf("#%d: %s の移行記録の保存に失敗しました: %w", issue.ID, key, err)}
	}
	return outcome{record: record}
}

func (m *Migrator) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
