package textdiff

import (
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Unified は変換前後のテキストをgit形式のunified diffで返します。差分がなければ空文字を返します。
func Unified(name, before, after string, color bool) (string, error) {
	if before == after {
		return "", nil
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 1 * time.Second
	fromRunes, toRunes, runesToLines := dmp.DiffLinesToRunes(withTrailingNewline(before), withTrailingNewline(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(fromRunes, toRunes, false), runesToLines)

	chunks := make([]diff.Chunk, 0, len(diffs))
	for _, d := range diffs {
		chunks = append(chunks, newChunkFromDiff(d))
	}

	builder := strings.Builder{}
	encoder := diff.NewUnifiedEncoder(&builder, diff.DefaultContextLines)
	if color {
		encoder.SetColor(diff.NewColorConfig())
	}

	patch := &gitDiffPatch{
		filePatches: []diff.FilePatch{
			&filePatch{
				from:   newDiffFile(name, before),
				to:     newDiffFile(name, after),
				chunks: chunks,
			},
		},
	}
	if err := encoder.Encode(patch); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// 最終行に改行がないと "\ No newline at end of file" が混ざるので揃える
func withTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// chezmoi diffを参考に。
// https://github.com/twpayne/chezmoi/blob/09214451c3904b77ec8d6303ff1ae221b75f93ce/internal/chezmoi/diff.go#L67
type gitDiffPatch struct {
	filePatches []diff.FilePatch
	message     string
}

func (p *gitDiffPatch) FilePatches() []diff.FilePatch { return p.filePatches }
func (p *gitDiffPatch) Message() string               { return p.message }

type filePatch struct {
	from, to diff.File
	chunks   []diff.Chunk
}

var _ diff.FilePatch = (*filePatch)(nil)

func (f *filePatch) Chunks() []diff.Chunk        { return f.chunks }
func (f *filePatch) Files() (from, to diff.File) { return f.from, f.to }
func (f *filePatch) IsBinary() bool              { return false }

type diffFile struct {
	relPath string
	hash    plumbing.Hash
}

var _ diff.File = (*diffFile)(nil)

func newDiffFile(name, content string) *diffFile {
	return &diffFile{
		relPath: name,
		hash:    plumbing.ComputeHash(plumbing.BlobObject, []byte(content)),
	}
}

func (f *diffFile) Hash() plumbing.Hash     { return f.hash }
func (f *diffFile) Mode() filemode.FileMode { return filemode.Regular }
func (f *diffFile) Path() string            { return f.relPath }

type diffChunk struct {
	content   string
	operation diff.Operation
}

var _ diff.Chunk = diffChunk{}

func (d diffChunk) Content() string      { return d.content }
func (d diffChunk) Type() diff.Operation { return d.operation }

func newChunkFromDiff(d diffmatchpatch.Diff) diff.Chunk {
	var op diff.Operation
	switch d.Type {
	case diffmatchpatch.DiffInsert:
		op = diff.Add
	case diffmatchpatch.DiffDelete:
		op = diff.Delete
	default:
		op = diff.Equal
	}
	return diffChunk{content: d.Text, operation: op}
}
