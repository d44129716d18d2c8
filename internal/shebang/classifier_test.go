package shebang

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "/data/data/com.termux/files/usr"

func TestClassifyLine(t *testing.T) {
	c := NewClassifier(testPrefix)

	tests := []struct {
		name       string
		line       string
		wantKind   Kind
		wantPrefix string
		wantName   string
		wantInterp string
	}{
		{
			name:       "env bash",
			line:       "#!/usr/bin/env bash",
			wantKind:   NeedsRewrite,
			wantPrefix: "/usr",
			wantName:   "env bash",
			wantInterp: "/usr/bin/env bash",
		},
		{
			name:       "bin sh has empty prefix",
			line:       "#!/bin/sh",
			wantKind:   NeedsRewrite,
			wantPrefix: "",
			wantName:   "sh",
			wantInterp: "/bin/sh",
		},
		{
			name:       "single space after bang",
			line:       "#! /usr/local/bin/perl -w",
			wantKind:   NeedsRewrite,
			wantPrefix: "/usr/local",
			wantName:   "perl -w",
			wantInterp: "/usr/local/bin/perl -w",
		},
		{
			name:       "greedy match keeps last bin",
			line:       "#!/opt/bin/tools/bin/python3",
			wantKind:   NeedsRewrite,
			wantPrefix: "/opt/bin/tools",
			wantName:   "python3",
			wantInterp: "/opt/bin/tools/bin/python3",
		},
		{
			name:       "system interpreter",
			line:       "#!/system/bin/sh",
			wantKind:   SystemProtected,
			wantPrefix: "/system",
			wantName:   "sh",
			wantInterp: "/system/bin/sh",
		},
		{
			name:       "system prefix is a plain prefix match",
			line:       "#!/systemd/bin/tool",
			wantKind:   SystemProtected,
			wantPrefix: "/systemd",
			wantName:   "tool",
			wantInterp: "/systemd/bin/tool",
		},
		{
			name:       "already under prefix",
			line:       "#!" + testPrefix + "/bin/python3",
			wantKind:   AlreadyCorrect,
			wantPrefix: testPrefix,
			wantName:   "python3",
			wantInterp: testPrefix + "/bin/python3",
		},
		{
			name:       "already under prefix with env",
			line:       "#!" + testPrefix + "/bin/env python",
			wantKind:   AlreadyCorrect,
			wantPrefix: testPrefix,
			wantName:   "env python",
			wantInterp: testPrefix + "/bin/env python",
		},
		{
			name:       "relative prefix",
			line:       "#!./bin/foo",
			wantKind:   NeedsRewrite,
			wantPrefix: ".",
			wantName:   "foo",
			wantInterp: "./bin/foo",
		},
		{
			name:       "relative prefix without dot",
			line:       "#!usr/bin/env python",
			wantKind:   NeedsRewrite,
			wantPrefix: "usr",
			wantName:   "env python",
			wantInterp: "usr/bin/env python",
		},
		{
			name:       "space then relative prefix",
			line:       "#! local/bin/perl",
			wantKind:   NeedsRewrite,
			wantPrefix: "local",
			wantName:   "perl",
			wantInterp: "local/bin/perl",
		},
		{
			name:     "no slash before bin",
			line:     "#!bin/sh",
			wantKind: NotAShebang,
		},
		{
			name:     "tab before relative prefix",
			line:     "#!\t./bin/foo",
			wantKind: NotAShebang,
		},
		{
			name:     "plain text",
			line:     "hello world",
			wantKind: NotAShebang,
		},
		{
			name:     "empty line",
			line:     "",
			wantKind: NotAShebang,
		},
		{
			name:     "bang without bin",
			line:     "#!/usr/local/python",
			wantKind: NotAShebang,
		},
		{
			name:     "bang not at start",
			line:     "echo #!/bin/sh",
			wantKind: NotAShebang,
		},
		{
			name:     "tab after bang",
			line:     "#!\t/usr/bin/env bash",
			wantKind: NotAShebang,
		},
		{
			name:     "two spaces after bang",
			line:     "#!  /usr/bin/env bash",
			wantKind: NotAShebang,
		},
		{
			name:     "uppercase bin is not bin",
			line:     "#!/usr/BIN/env bash",
			wantKind: NotAShebang,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.ClassifyLine(tt.line)
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, tt.line, res.Line)
			assert.Equal(t, int64(len(tt.line)), res.RemainderOffset)
			if tt.wantKind == NotAShebang {
				return
			}
			assert.Equal(t, tt.wantPrefix, res.OldPrefix)
			assert.Equal(t, tt.wantName, res.Name)
			assert.Equal(t, tt.wantInterp, res.Interpreter)
		})
	}
}

func TestResult_NewLine(t *testing.T) {
	res := NewClassifier(testPrefix).ClassifyLine("#!/usr/bin/env bash")
	assert.Equal(t, "#!"+testPrefix+"/bin/env bash", res.NewLine(testPrefix))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "not-a-shebang", NotAShebang.String())
	assert.Equal(t, "system-protected", SystemProtected.String())
	assert.Equal(t, "already-correct", AlreadyCorrect.String())
	assert.Equal(t, "needs-rewrite", NeedsRewrite.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestReadFirstLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"terminated", "#!/bin/sh\necho hi\n", "#!/bin/sh"},
		{"unterminated", "#!/bin/sh", "#!/bin/sh"},
		{"empty", "", ""},
		{"only newline", "\nmore", ""},
		{"crlf keeps cr", "#!/bin/sh\r\nexit\r\n", "#!/bin/sh\r"},
		{"truncated", strings.Repeat("x", MaxLineLength+50) + "\n", strings.Repeat("x", MaxLineLength)},
		{"exactly max without newline", strings.Repeat("y", MaxLineLength), strings.Repeat("y", MaxLineLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFirstLine(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script")
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/env bash\necho hi\n"), 0755))

	res, err := NewClassifier(testPrefix).Classify(path)
	require.NoError(t, err)
	assert.Equal(t, NeedsRewrite, res.Kind)
	assert.Equal(t, "env bash", res.Name)
	assert.Equal(t, int64(len("#!/usr/bin/env bash")), res.RemainderOffset)
}

func TestClassify_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	res, err := NewClassifier(testPrefix).Classify(path)
	require.NoError(t, err)
	assert.Equal(t, NotAShebang, res.Kind)
}

func TestClassify_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing")

	_, err := NewClassifier(testPrefix).Classify(path)
	require.Error(t, err)

	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, path, openErr.Path)
	assert.True(t, os.IsNotExist(openErr.Unwrap()))
	assert.Contains(t, err.Error(), path)
}

func TestClassify_Directory(t *testing.T) {
	dir := t.TempDir()

	_, err := NewClassifier(testPrefix).Classify(dir)
	require.Error(t, err)

	var readErr *ReadError
	assert.ErrorAs(t, err, &readErr)
}
