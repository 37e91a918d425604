package cli

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-sif/splitmerge"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(ioutil.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema("id:int64, name:string(8), created:time(2006-01-02 15:04), shape:geometry")
	require.Nil(t, err)
	require.Equal(t, []string{"id", "name", "created", "shape"}, s.ColumnNames())
	col, err := s.GetColumn("created")
	require.Nil(t, err)
	require.Equal(t, &splitmerge.TimeColumnType{Format: "2006-01-02 15:04"}, col.Type())

	for _, bad := range []string{"", "id", "id:uint8", "name:string", "name:string(x)", "at:time", "a:int32,a:int64"} {
		_, err := ParseSchema(bad)
		require.NotNil(t, err, bad)
	}
}

func TestTransformCommand(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("id,name,tmp\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "%d,name%d,x\n", i, i)
	}
	in := filepath.Join(dir, "in.csv")
	require.Nil(t, ioutil.WriteFile(in, []byte(sb.String()), 0644))
	outPath := filepath.Join(dir, "out.csv")

	stdout, err := runCmd(t, "transform",
		"--input", in,
		"--input-schema", "id:int64,name:varstring,tmp:varstring",
		"--input-header-lines", "1",
		"--remove-columns", "tmp",
		"--output", outPath,
		"--partitions", "4",
		"--concurrency", "pooled",
		"--workspace", "memory",
		"--log-level", "error",
	)
	require.Nil(t, err)
	require.Contains(t, stdout, "Wrote 25 of 25 records")

	contents, err := ioutil.ReadFile(outPath)
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Len(t, lines, 26)
	require.Equal(t, "id,name", lines[0])
	require.Equal(t, "0,name0", lines[1])
	require.Equal(t, "24,name24", lines[25])
}

func TestTransformCommandInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	require.Nil(t, ioutil.WriteFile(in, []byte("1\n"), 0644))
	_, err := runCmd(t, "transform",
		"--input", in,
		"--input-schema", "id:int64",
		"--output", filepath.Join(dir, "out.csv"),
		"--partitions", "0",
	)
	require.NotNil(t, err)
}

func TestJoinCommand(t *testing.T) {
	dir := t.TempDir()
	var left, right strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&left, "%d,k%d\n", i, i)
		if i%2 == 0 {
			fmt.Fprintf(&right, "k%d,v%d\n", i, i)
		}
	}
	require.Nil(t, ioutil.WriteFile(filepath.Join(dir, "left.csv"), []byte(left.String()), 0644))
	require.Nil(t, ioutil.WriteFile(filepath.Join(dir, "right.csv"), []byte(right.String()), 0644))
	outPath := filepath.Join(dir, "joined.csv")
	unmatchedPath := filepath.Join(dir, "unmatched.csv")

	stdout, err := runCmd(t, "join",
		"--input", filepath.Join(dir, "left.csv"),
		"--input-schema", "id:int64,key:varstring",
		"--target", filepath.Join(dir, "right.csv"),
		"--target-schema", "key:varstring,value:varstring",
		"--left-key", "key",
		"--right-key", "key",
		"--output", outPath,
		"--unmatched", unmatchedPath,
		"--partitions", "3",
		"--workspace", "memory",
		"--log-level", "error",
	)
	require.Nil(t, err)
	require.Contains(t, stdout, "Matched 5 of 10 records")

	contents, err := ioutil.ReadFile(outPath)
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Equal(t, "id,key,value", lines[0])
	require.Equal(t, "0,k0,v0", lines[1])
	require.Equal(t, "1,k1,", lines[2])

	contents, err = ioutil.ReadFile(unmatchedPath)
	require.Nil(t, err)
	require.Equal(t, "key\nk1\nk3\nk5\nk7\nk9\n", string(contents))
}
