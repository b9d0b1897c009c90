package formatting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stageCase struct {
	name     string
	input    string
	expected string
}

func runStageCases(t *testing.T, stage func(string, Config) string, cfg Config, tests []stageCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, stage(tt.input, cfg))
		})
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	t.Parallel()

	runStageCases(t, normalizeLineEndings, Config{}, []stageCase{
		{name: "CRLF", input: "a\r\nb", expected: "a\nb"},
		{name: "CR", input: "a\rb", expected: "a\nb"},
		{name: "混在", input: "a\r\n\rb\n", expected: "a\n\nb\n"},
	})
}

func TestConvertCodeBlocks(t *testing.T) {
	t.Parallel()

	runStageCases(t, convertCodeBlocks, Config{}, []stageCase{
		{
			name:     "言語指定付きcodeはpreだけ外す",
			input:    `<pre><code class="ruby">puts 'test'</code></pre>`,
			expected: `<code class="ruby">puts 'test'</code>`,
		},
		{
			name:     "前後の改行があっても言語指定付きcodeとして扱う",
			input:    "<pre>\n<code class=\"go\">\nfmt.Println()\n</code>\n</pre>",
			expected: "<code class=\"go\">\nfmt.Println()\n</code>",
		},
		{
			name:     "空のclassもcodeとして扱う",
			input:    `<pre><code class="">a</code></pre>`,
			expected: `<code class="">a</code>`,
		},
		{
			name:     "codeでない中身はnoformat",
			input:    "<pre>{testing}</pre>",
			expected: "{noformat}{testing}{noformat}",
		},
		{
			name:     "classのないcodeはnoformat",
			input:    "<pre><code>x = 1</code></pre>",
			expected: "{noformat}x = 1{noformat}",
		},
		{
			name:     "複数行",
			input:    "<pre>\nline1\nline2\n</pre>",
			expected: "{noformat}\nline1\nline2\n{noformat}",
		},
		{
			name:     "複数のブロック",
			input:    "<pre>a</pre> and <pre>b</pre>",
			expected: "{noformat}a{noformat} and {noformat}b{noformat}",
		},
		{
			name:     "大文字のタグ",
			input:    "<PRE>x</PRE>",
			expected: "{noformat}x{noformat}",
		},
		{
			name:     "入れ子のpreは最初の閉じタグまで",
			input:    "<pre><pre>x</pre></pre>",
			expected: "{noformat}x{noformat}</pre>",
		},
		{
			name:     "閉じタグのないpreはそのまま",
			input:    "<pre>open only",
			expected: "<pre>open only",
		},
		{
			name:     "preで始まる別のタグは対象外",
			input:    "<preview>x</preview>",
			expected: "<preview>x</preview>",
		},
	})
}

func TestConvertCodeLanguage(t *testing.T) {
	t.Parallel()

	runStageCases(t, convertCodeLanguage, Config{Wiki: true}, []stageCase{
		{
			name:     "言語指定",
			input:    `<code class="python">print("x")</code>`,
			expected: `{code:language=python}print("x"){code}`,
		},
		{
			name:     "別名の正規化",
			input:    `<code class="rb">p 1</code>`,
			expected: `{code:language=ruby}p 1{code}`,
		},
		{
			name:     "syntaxhlは無視",
			input:    `<code class="ruby syntaxhl">x</code>`,
			expected: `{code:language=ruby}x{code}`,
		},
		{
			name:     "language-プレフィックスとシングルクォート",
			input:    `<code class='language-go'>x</code>`,
			expected: `{code:language=go}x{code}`,
		},
		{
			name:     "空のclassは言語なし",
			input:    `<code class="">x</code>`,
			expected: `{code}x{code}`,
		},
		{
			name:     "不正な言語名は言語なし",
			input:    `<code class="!!">x</code>`,
			expected: `{code}x{code}`,
		},
		{
			name:     "classのない1行のcodeは等幅",
			input:    `use <code>make</code> here`,
			expected: `use {{make}} here`,
		},
		{
			name:     "classのない複数行のcodeはコードブロック",
			input:    "<code>a\nb</code>",
			expected: "{code}a\nb{code}",
		},
		{
			name:     "閉じタグのないcodeはそのまま",
			input:    `<code class="go">x`,
			expected: `<code class="go">x`,
		},
	})
}

func TestConvertInlineCode(t *testing.T) {
	t.Parallel()

	runStageCases(t, convertInlineCode, Config{}, []stageCase{
		{name: "基本", input: "This is @code@ inside text", expected: "This is {{code}} inside text"},
		{name: "複数", input: "@a@ and @b@", expected: "{{a}} and {{b}}"},
		{name: "句読点の前", input: "run @make test@.", expected: "run {{make test}}."},
		{name: "メールアドレス", input: "mail me at user@example.com", expected: "mail me at user@example.com"},
		{name: "メールアドレスの後ろ", input: "foo@bar @baz@", expected: "foo@bar {{baz}}"},
		{name: "改行をまたがない", input: "@a\nb@", expected: "@a\nb@"},
		{name: "空白で囲まれた@", input: "@ spaced @", expected: "@ spaced @"},
		{name: "空の@@", input: "@@", expected: "@@"},
		{name: "コード領域は対象外", input: "{noformat}@x@{noformat}", expected: "{noformat}@x@{noformat}"},
	})
}

func TestConvertIssueLinks(t *testing.T) {
	t.Parallel()

	runStageCases(t, convertIssueLinks, Config{ServerBaseURL: testServer}, []stageCase{
		{
			name:     "複数の参照",
			input:    "#1 and #22",
			expected: "[#1|https://redmine.example.com/issues/1] and [#22|https://redmine.example.com/issues/22]",
		},
		{
			name:     "括弧の中",
			input:    "(#7)",
			expected: "([#7|https://redmine.example.com/issues/7])",
		},
		{name: "HTMLの数値文字参照", input: "&#123;", expected: "&#123;"},
		{name: "単語に続く#", input: "abc#12", expected: "abc#12"},
		{name: "数字の後ろに文字", input: "#12abc", expected: "#12abc"},
		{name: "URLのフラグメント", input: "https://example.com/#12", expected: "https://example.com/#12"},
		{name: "番号付きリスト", input: "# item", expected: "# item"},
		{name: "noformatの中", input: "{noformat}#5{noformat}", expected: "{noformat}#5{noformat}"},
		{name: "等幅の中", input: "{{#5}}", expected: "{{#5}}"},
		{name: "波括弧を含む等幅の中", input: "{{#5 {x}}} #6", expected: "{{#5 {x}}} [#6|https://redmine.example.com/issues/6]"},
	})
}

func TestRemoveBackground(t *testing.T) {
	t.Parallel()

	runStageCases(t, removeBackground, Config{Wiki: true}, []stageCase{
		{name: "background", input: "{background:red}x", expected: "x"},
		{name: "background-color", input: "x{background-color:#ffcc00}", expected: "x"},
		{name: "colorは残す", input: "{color:red}x{color}", expected: "{color:red}x{color}"},
		{name: "入れ子", input: "{background:{background:red}}", expected: ""},
		{name: "内側を消すと一致するもの", input: "{back{background:x}ground:red}y", expected: "y"},
		{name: "多重の入れ子", input: "a{back{back{background:1}ground:2}ground-color:3}b", expected: "ab"},
	})
}

func TestConvertDrawioAttachments(t *testing.T) {
	t.Parallel()

	runStageCases(t, convertDrawioAttachments, Config{}, []stageCase{
		{name: "基本", input: "foo \n {{drawio_attach(drawing.png)}} bar", expected: "foo \n !drawing.png! bar"},
		{name: "オプション付き", input: "{{drawio_attach(diagram.png, size=300)}}", expected: "!diagram.png!"},
		{name: "前後の空白", input: "{{drawio_attach( a.svg )}}", expected: "!a.svg!"},
		{name: "ファイル名なし", input: "{{drawio_attach()}}", expected: "{{drawio_attach()}}"},
	})
}

func TestConvertTOC(t *testing.T) {
	t.Parallel()

	runStageCases(t, convertTOC, Config{Wiki: true}, []stageCase{
		{name: "toc", input: "{{toc}}", expected: "{toc}"},
		{name: "右寄せ", input: "{{>toc}}", expected: "{toc}"},
		{name: "左寄せ", input: "{{<toc}}", expected: "{toc}"},
	})
}

func TestPadEmptyCells(t *testing.T) {
	t.Parallel()

	runStageCases(t, padEmptyCells, Config{Wiki: true}, []stageCase{
		{name: "空セル", input: "|a||b|", expected: "|a| |b|"},
		{name: "連続する空セル", input: "|||", expected: "| | |"},
		{name: "見出し行", input: "||Test||", expected: "| |Test| |"},
		{name: "noformatの中", input: "{noformat}||{noformat}", expected: "{noformat}||{noformat}"},
	})
}

func TestLanguageFromClass(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"python":          "python",
		"Ruby":            "ruby",
		"c++":             "cpp",
		"yml":             "yaml",
		"lang-js":         "javascript",
		"syntaxhl":        "",
		"":                "",
		"ruby syntaxhl":   "ruby",
		"code sql":        "sql",
		"<script>":        "",
		"language-golang": "go",
	}
	for class, expected := range tests {
		assert.Equal(t, expected, languageFromClass(class), class)
	}
}
