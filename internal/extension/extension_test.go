package extension

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindExtensions(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()

	createTestExtension(t, first, "rm2jira-test1", "#!/bin/sh\necho test1")
	createTestExtension(t, first, "rm2jira-test2", "#!/bin/sh\necho test2")
	createTestExtension(t, first, "not-rm2jira-extension", "#!/bin/sh\necho not")
	createTestExtension(t, second, "rm2jira-test1", "#!/bin/sh\necho shadowed")
	require.NoError(t, os.WriteFile(filepath.Join(first, "rm2jira-noexec"), []byte("x"), 0o644))

	manager := &Manager{PathEnv: first + string(os.PathListSeparator) + second}
	extensions, err := manager.FindExtensions()
	require.NoError(t, err)

	assert.Equal(t, []Extension{
		{Name: "test1", Path: filepath.Join(first, "rm2jira-test1")},
		{Name: "test2", Path: filepath.Join(first, "rm2jira-test2")},
	}, extensions)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	createTestExtension(t, dir, "rm2jira-upper", "#!/bin/sh\ntr a-z A-Z")
	createTestExtension(t, dir, "rm2jira-fail", "#!/bin/sh\necho broken >&2\nexit 3")

	manager := &Manager{PathEnv: dir}

	upper, err := manager.Lookup("upper")
	require.NoError(t, err)
	out, err := upper.Filter(context.Background(), "{toc}\n")
	require.NoError(t, err)
	assert.Equal(t, "{TOC}\n", out)

	fail, err := manager.Lookup("fail")
	require.NoError(t, err)
	_, err = fail.Filter(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestLookupAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	createTestExtension(t, dir, "rm2jira-a", "#!/bin/sh\ncat")
	createTestExtension(t, dir, "rm2jira-b", "#!/bin/sh\ncat")
	manager := &Manager{PathEnv: dir}

	exts, err := manager.LookupAll([]string{"b", "a"})
	require.NoError(t, err)
	require.Len(t, exts, 2)
	assert.Equal(t, "b", exts[0].Name)
	assert.Equal(t, "a", exts[1].Name)

	_, err = manager.LookupAll([]string{"a", "nonexistent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension 'nonexistent' not found")
}

func createTestExtension(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0o755)
	require.NoError(t, err)
}
