package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estimatedoc/services"
)

const itemsCSV = `大項目,中項目,小項目,名称,数量,単位,単価
建築工事,内装工事,1階,天井ボード,10,㎡,2000
建築工事,内装工事,2階,壁クロス,5,㎡,1000
電気設備工事,照明,,LED照明,2,台,15000
`

const infoCSV = `項目,内容
顧客名,テスト商事
工事名,〇〇ビル改修工事
日付,2024-04-15
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "estimatedoc", SilenceUsage: true, SilenceErrors: true}
	Register(root)
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRoot()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		format, output string
		want           string
		wantErr        bool
	}{
		{"", "out.pdf", services.FormatPDF, false},
		{"", "out.XLSX", services.FormatExcel, false},
		{"", "out", services.FormatPDF, false},
		{"", "out.docx", "", true},
		{"summary", "out.pdf", services.FormatSummary, false},
		{"excel", "out.bin", services.FormatExcel, false},
		{"svg", "out.svg", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.output, func(t *testing.T) {
			got, err := outputFormat(tt.format, tt.output)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Excel(t *testing.T) {
	dir := t.TempDir()
	items := writeFile(t, dir, "items.csv", itemsCSV)
	info := writeFile(t, dir, "info.csv", infoCSV)
	out := filepath.Join(dir, "estimate.xlsx")

	_, err := execute(t, "render", "--items", items, "--info", info, "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "xlsx is a zip archive")
}

func TestRender_PDF(t *testing.T) {
	dir := t.TempDir()
	items := writeFile(t, dir, "items.csv", itemsCSV)
	out := filepath.Join(dir, "estimate.pdf")

	_, err := execute(t, "render", "--items", items, "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRender_MissingItemsFile(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "render", "--items", filepath.Join(dir, "missing.csv"), "--out", filepath.Join(dir, "x.pdf"))
	assert.Error(t, err)
}

func TestRender_BadConfig(t *testing.T) {
	dir := t.TempDir()
	items := writeFile(t, dir, "items.csv", itemsCSV)
	cfg := writeFile(t, dir, "config.yaml", "tax_rate: 3")

	_, err := execute(t, "render", "--items", items, "--out", filepath.Join(dir, "x.pdf"), "--config", cfg)
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	items := writeFile(t, dir, "items.csv", itemsCSV)

	tests := []struct {
		section string
		want    []string
	}{
		{"detail", []string{"内 訳 明 細 書", "天井ボード", "LED照明"}},
		{"summary", []string{"見 積 総 括 表", "建築工事", "電気設備工事"}},
		{"breakdown", []string{"内装工事", "照明"}},
	}
	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			out, err := execute(t, "preview", "--items", items, "--section", tt.section)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestPreview_InvalidSection(t *testing.T) {
	dir := t.TempDir()
	items := writeFile(t, dir, "items.csv", itemsCSV)
	_, err := execute(t, "preview", "--items", items, "--section", "cover")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2024-01-01")
	t.Cleanup(func() { SetVersion("dev", "", "") })

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "estimatedoc 1.2.3\n"))
	assert.Contains(t, out, "commit: abc123")
}
