package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ssargent/databin/pkg/codec"
	"github.com/ssargent/databin/pkg/config"
	"github.com/ssargent/databin/pkg/dump"
	"github.com/ssargent/databin/pkg/storage"
	"github.com/ssargent/databin/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = "" +
	"  0: container:\n" +
	"    1:      byte: 66 (0x42)\n" +
	"    2: container:\n" +
	"      3:       i32: 1234 (0x4d2)\n" +
	"      4:       u64: 18446744073709551603 (0xfffffffffffffff3)\n" +
	"    5: container:\n" +
	"      6:    string: abc\n" +
	"      7:    string: abc123\n"

func writeSampleFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.bin")
	require.NoError(t, runExample(path, 0))
	return path
}

func TestRunExampleAndDump(t *testing.T) {
	path := writeSampleFile(t)

	info, err := os.Stat(path)
	require.NoError(t, err)
	// 3 containers of 3 bytes, 3 closes, u8, i32, u64, two strings
	assert.Equal(t, int64(3*3+3*3+4+7+11+(3+2+3)+(3+2+6)), info.Size())

	var out bytes.Buffer
	require.NoError(t, runDump(path, &out, dump.DefaultOptions(), 16))
	assert.Equal(t, sampleDump, out.String())
}

func TestRunDump_Failures(t *testing.T) {
	path := writeSampleFile(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	t.Run("missing file", func(t *testing.T) {
		err := runDump(filepath.Join(t.TempDir(), "nope.bin"), &bytes.Buffer{}, dump.DefaultOptions(), 0)
		assert.Error(t, err)
	})

	t.Run("truncated record", func(t *testing.T) {
		truncated := filepath.Join(t.TempDir(), "truncated.bin")
		require.NoError(t, os.WriteFile(truncated, data[:len(data)-5], 0600))

		var out bytes.Buffer
		err := runDump(truncated, &out, dump.DefaultOptions(), 0)
		assert.ErrorIs(t, err, codec.ErrUnexpectedEnd)
		// records before the failure are still printed
		assert.Contains(t, out.String(), "6:    string: abc\n")
	})

	t.Run("unbalanced in strict mode", func(t *testing.T) {
		open := filepath.Join(t.TempDir(), "open.bin")
		require.NoError(t, os.WriteFile(open, data[:len(data)-3], 0600))

		opts := dump.DefaultOptions()
		require.NoError(t, runDump(open, &bytes.Buffer{}, opts, 0))

		opts.Strict = true
		assert.ErrorIs(t, runDump(open, &bytes.Buffer{}, opts, 0), dump.ErrUnbalanced)
	})
}

func TestPutFileAndDumpStored(t *testing.T) {
	s, err := storage.NewDefaultStorage(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	path := writeSampleFile(t)
	id, records, err := putFile(s, path, 0)
	require.NoError(t, err)
	assert.Equal(t, 11, records)

	parsed, err := storage.ParseID(id)
	require.NoError(t, err)
	stored, err := s.Read(parsed)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, stored)

	var out bytes.Buffer
	require.NoError(t, dumpStored(s, id, &out, dump.DefaultOptions()))
	assert.Equal(t, sampleDump, out.String())

	assert.Error(t, dumpStored(s, "bogus", &bytes.Buffer{}, dump.DefaultOptions()))
}

func TestPutFile_RejectsMalformed(t *testing.T) {
	s, err := storage.NewDefaultStorage(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	bad := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(bad, []byte{'y', 1, 0, 7, '?', 0, 0}, 0600))

	_, records, err := putFile(s, bad, 0)
	assert.ErrorIs(t, err, codec.ErrMalformedTag)
	assert.Equal(t, 1, records)

	infos, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestCopyRecords(t *testing.T) {
	src := stream.NewBufferStream(nil)
	require.NoError(t, writeSample(codec.New(src)))

	dst := stream.NewBufferStream(nil)
	n, err := copyRecords(codec.New(dst), codec.New(stream.NewBufferStream(src.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, src.Bytes(), dst.Bytes())
}

func TestDumpOptions(t *testing.T) {
	c := config.DefaultConfig()
	c.Dump.Hex = false
	c.Dump.Strict = true

	opts := dumpOptions(c, logger)
	assert.Equal(t, 2, opts.IndentWidth)
	assert.Equal(t, 3, opts.KeyWidth)
	assert.Equal(t, 9, opts.TypeWidth)
	assert.False(t, opts.Hex)
	assert.True(t, opts.Strict)
}

func TestRootCommand_Dump(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	c := config.DefaultConfig()
	c.Dump.Hex = false
	c.Logging.Level = "error"
	require.NoError(t, config.SaveConfig(c, configPath))

	path := writeSampleFile(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", configPath, "dump", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "      3:       i32: 1234\n")
	assert.NotContains(t, out.String(), "0x")
}

func TestRootCommand_Help(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"dump", "--help"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		_ = dumpCmd.Flags().Set("help", "false")
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "dump <file>")
	assert.Contains(t, out.String(), "--strict")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "dump", "x.bin"})
	rootCmd.SetOut(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	assert.ErrorContains(t, err, "config file does not exist")
}
