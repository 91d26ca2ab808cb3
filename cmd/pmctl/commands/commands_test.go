package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeItem(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const (
	itemA = `{"ItemID":"1","Title":"Apple iPhone 6s Rose Gold","ItemSpecifics":{"NameValueList":[{"Name":"Brand","Value":"Apple"},{"Name":"Model","Value":"6s"}]}}`
	itemB = `{"ItemID":"2","Title":"iPhone 6s 64GB","ItemSpecifics":{"NameValueList":[{"Name":"Brand","Value":"Apple"},{"Name":"Model","Value":"6s"}]}}`
	itemC = `{"ItemID":"3","Title":"Galaxy S7","ItemSpecifics":{"NameValueList":{"Name":"Brand","Value":"Samsung"}}}`
)

func TestExact(t *testing.T) {
	dir := t.TempDir()
	a := writeItem(t, dir, "item-1.json", itemA)
	b := writeItem(t, dir, "item-2.json", itemB)
	c := writeItem(t, dir, "item-3.json", itemC)

	out, err := run(t, "exact", a, b)
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)

	out, err = run(t, "exact", "--keys", "brand", a, c)
	require.NoError(t, err)
	assert.Equal(t, "no\n", out)

	// the differing brand decides before the missing model is reached
	out, err = run(t, "exact", "--keys", "brand,model", a, c)
	require.NoError(t, err)
	assert.Equal(t, "no\n", out)

	out, err = run(t, "exact", "--keys", "model,brand", a, c)
	require.NoError(t, err)
	assert.Equal(t, "unknown\n", out)

	_, err = run(t, "exact", a)
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	dir := t.TempDir()
	writeItem(t, dir, "product-db.json", `[{"id":"phones","label":"Mobile phones"},{"id":"games","label":"Video games"}]`)
	t.Setenv("PM_CATALOG_DIR", dir)

	out, err := run(t, "categories")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "phones"))
	assert.Contains(t, lines[2], "Video games")
}

func TestNgrams(t *testing.T) {
	dir := t.TempDir()
	writeItem(t, dir, "item-1.json", itemA)
	writeItem(t, dir, "item-2.json", itemB)

	out, err := run(t, "ngrams", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "iphone\t2\n")
	assert.Contains(t, out, "6s\t")

	_, err = run(t, "ngrams", filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
