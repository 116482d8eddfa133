package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cf "jsolve/pkg/classfile"
	"jsolve/pkg/types"
)

func run(args ...string) (string, error) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	err := app.Run(context.Background(), append([]string{"jsolve"}, args...))
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run("version")
	require.NoError(t, err)
	assert.Equal(t, "jsolve v"+version+"\n", out)
}

func TestDescribe(t *testing.T) {
	out, err := run("describe", "java.util.ArrayList")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "class java.util.ArrayList<E> (reflective)", lines[0])
	assert.Contains(t, out, "  extends java.util.List<E>\n")
	assert.Contains(t, out, "  constructor ArrayList(int)\n")
	assert.Contains(t, out, "  method get(int) E\n")
	assert.Contains(t, out, "  method size() int\n")

	_, err = run("describe")
	assert.ErrorContains(t, err, "missing type name")
}

func TestAncestors(t *testing.T) {
	out, err := run("ancestors", "java.util.ArrayList")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "java.util.List<E>", lines[0])
	assert.Contains(t, lines, "java.util.Collection<E>")
	assert.Equal(t, types.ObjectName, lines[len(lines)-1])
}

func TestMethod(t *testing.T) {
	out, err := run("method", "java.lang.String", "charAt", "int")
	require.NoError(t, err)
	assert.Equal(t, "java.lang.String.charAt(int) char\n", out)

	_, err = run("method", "java.lang.String", "charAt", "java.lang.Nope")
	require.Error(t, err)
	assert.True(t, types.IsUnresolved(err))

	_, err = run("method", "java.lang.String")
	assert.ErrorContains(t, err, "expected a type and a method name")

	_, err = run("method", "java.lang.String", "charAt", "null[]")
	assert.ErrorContains(t, err, "invalid argument type")
}

func TestClasspathFlag(t *testing.T) {
	dir := t.TempDir()
	class := &cf.Class{
		Major:  52,
		Access: cf.AccPublic | cf.AccSuper,
		Name:   "q/Util",
		Super:  "java/lang/Object",
		Methods: []cf.Member{
			{Access: cf.AccPublic | cf.AccStatic, Name: "twice", Descriptor: "(I)I"},
			{Access: cf.AccPublic | cf.AccStatic, Name: "twice", Descriptor: "([I)[I"},
		},
	}
	file := filepath.Join(dir, "q", "Util.class")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, cf.Encode(class), 0o644))

	out, err := run("--classpath", dir, "method", "--static", "q.Util", "twice", "int[]")
	require.NoError(t, err)
	assert.Equal(t, "q.Util.twice(int[]) int[]\n", out)

	out, err = run("--classpath", dir, "describe", "q.Util")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "class q.Util (compiled)\n"), out)

	_, err = run("describe", "q.Util")
	assert.True(t, types.IsUnresolved(err))
}

func TestConfigFlag(t *testing.T) {
	_, err := run("--config", filepath.Join(t.TempDir(), "missing.yaml"), "describe", "java.lang.String")
	assert.ErrorContains(t, err, "failed to download config")
}
