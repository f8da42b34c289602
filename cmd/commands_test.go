// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/mwdumps/config"
	"github.com/cardinalhq/mwdumps/internal/dumperr"
	"github.com/cardinalhq/mwdumps/internal/parquetexport"
)

const testSQLDump = "-- MySQL dump\n" +
	"INSERT INTO `page` VALUES (1,'Main_Page',NULL),(2,'Talk',1.5);\n" +
	"INSERT INTO `page` VALUES (3,'',-7);\n"

const testXMLDump = `<mediawiki>
  <page>
    <title>A</title>
    <ns>0</ns>
    <id>1</id>
    <revision>
      <id>5</id>
      <timestamp>2001-01-21T02:12:21Z</timestamp>
      <contributor><username>U</username><id>7</id></contributor>
      <comment>c</comment>
      <text>hello</text>
    </revision>
    <revision>
      <id>6</id>
      <timestamp>2001-01-22T02:12:21Z</timestamp>
      <contributor><ip>1.2.3.4</ip></contributor>
      <text></text>
    </revision>
  </page>
  <page>
    <title>B</title>
    <ns>4</ns>
    <id>2</id>
  </page>
</mediawiki>
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunSQLTSV(t *testing.T) {
	path := writeTemp(t, "page.sql", testSQLDump)

	var out bytes.Buffer
	require.NoError(t, runSQLTSV(context.Background(), config.DefaultConfig(), path, &out))

	assert.Equal(t, "1\tMain_Page\tNULL\n2\tTalk\t1.5\n3\t\t-7\n", out.String())
}

func TestRunSQLTSVReportsRowsBeforeError(t *testing.T) {
	path := writeTemp(t, "page.sql", "-- MySQL dump\nINSERT INTO `page` VALUES (1,'a'),(2,'b")

	var out bytes.Buffer
	err := runSQLTSV(context.Background(), config.DefaultConfig(), path, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dumperr.TruncatedStatement), "got %v", err)
	assert.Contains(t, err.Error(), "processed 1 rows before error")
	assert.Equal(t, "1\ta\n", out.String())
}

func TestRunSQLTSVStopsWhenCanceled(t *testing.T) {
	path := writeTemp(t, "page.sql", testSQLDump)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := runSQLTSV(ctx, config.DefaultConfig(), path, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, out.String())
}

func TestRunXMLInfo(t *testing.T) {
	path := writeTemp(t, "dump.xml", testXMLDump)

	var out bytes.Buffer
	require.NoError(t, runXMLInfo(context.Background(), config.DefaultConfig(), path, &out))

	want := strings.Join([]string{
		"== A ==",
		"Page ID: 1",
		"Namespace ID: 0",
		"Revision count: 2",
		"",
		"=== Revision 5 ===",
		"Timestamp: 2001-01-21T02:12:21Z",
		"Author name: U",
		"Author ID: 7",
		"Comment: c",
		"Size: 5 bytes (5 B)",
		"",
		"=== Revision 6 ===",
		"Timestamp: 2001-01-22T02:12:21Z",
		"Author IP: 1.2.3.4",
		"Comment: ",
		"Size: 0 bytes (0 B)",
		"",
		"",
		"== B ==",
		"Page ID: 2",
		"Namespace ID: 4",
		"Revision count: 0",
		"",
		"",
		"",
		"Handled 2 pages, 2 revisions",
		"",
	}, "\n")
	assert.Equal(t, want, out.String())
}

func TestRunXMLInfoTruncated(t *testing.T) {
	path := writeTemp(t, "dump.xml", testXMLDump[:strings.Index(testXMLDump, "<page>\n    <title>B")+10])

	var out bytes.Buffer
	err := runXMLInfo(context.Background(), config.DefaultConfig(), path, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dumperr.TruncatedDocument), "got %v", err)
	assert.Contains(t, err.Error(), "handled 1 pages, 2 revisions before error")
	assert.Contains(t, out.String(), "== A ==")
}

func TestRunXMLParquet(t *testing.T) {
	path := writeTemp(t, "dump.xml", testXMLDump)
	output := filepath.Join(t.TempDir(), "revisions.parquet")

	n, err := runXMLParquet(context.Background(), config.DefaultConfig(), path, xmlParquetOptions{
		output:   output,
		withText: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	stat, err := f.Stat()
	require.NoError(t, err)
	pf, err := parquet.OpenFile(f, stat.Size())
	require.NoError(t, err)

	assert.Equal(t, int64(2), pf.NumRows())
	_, ok := pf.Schema().Lookup(parquetexport.ColText)
	assert.True(t, ok)
}

func TestRunXMLParquetMissingDump(t *testing.T) {
	output := filepath.Join(t.TempDir(), "revisions.parquet")

	_, err := runXMLParquet(context.Background(), config.DefaultConfig(), filepath.Join(t.TempDir(), "nope.xml"), xmlParquetOptions{output: output})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dumperr.IOError))
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunSniff(t *testing.T) {
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write([]byte(testSQLDump))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	dir := t.TempDir()
	sqlPath := writeTemp(t, "page.sql", testSQLDump)
	gzPath := filepath.Join(dir, "page.sql.gz")
	require.NoError(t, os.WriteFile(gzPath, gz.Bytes(), 0o644))
	junkPath := filepath.Join(dir, "junk.txt")
	require.NoError(t, os.WriteFile(junkPath, []byte("nothing to see here"), 0o644))

	var out bytes.Buffer
	err = runSniff(&out, []string{sqlPath, gzPath, junkPath})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dumperr.UnrecognizedFormat), "got %v", err)

	assert.Equal(t,
		sqlPath+"\tsql\n"+gzPath+"\tgzip\tcompressed\n"+junkPath+"\tunknown\n",
		out.String())
}

func TestRunSniffAllRecognized(t *testing.T) {
	var out bytes.Buffer
	path := writeTemp(t, "dump.xml", testXMLDump)
	require.NoError(t, runSniff(&out, []string{path}))
	assert.Equal(t, path+"\txml\n", out.String())
}
