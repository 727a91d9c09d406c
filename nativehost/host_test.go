package nativehost

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frames encodes msgs as a native messaging input stream.
func frames(t *testing.T, msgs ...any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		require.NoError(t, WriteMessage(&buf, m))
	}
	return &buf
}

// replies decodes every framed reply of out.
func replies(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var all []map[string]any
	for out.Len() > 0 {
		var n uint32
		require.NoError(t, binary.Read(out, binary.LittleEndian, &n))
		var m map[string]any
		require.NoError(t, json.Unmarshal(out.Next(int(n)), &m))
		all = append(all, m)
	}
	return all
}

func TestServe(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	in := frames(t,
		Request{Type: "saveCsv", TargetDir: dir, Filename: "../../income.csv", Base64: base64.StdEncoding.EncodeToString([]byte("a,b\n1,2\n"))},
		Request{Type: "pickFolder", InitialDir: "/tmp"},
		Request{Type: "format"},
		Request{Type: "saveCsv", Filename: "x.csv"},
	)
	var out bytes.Buffer
	require.NoError(t, New(nil).Serve(context.Background(), in, &out))

	got := replies(t, &out)
	require.Len(t, got, 4)

	path := filepath.Join(dir, "income.csv")
	assert.Equal(t, map[string]any{"ok": true, "path": path}, got[0])
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(content))

	assert.Equal(t, map[string]any{"ok": true, "folder": nil}, got[1])
	assert.Equal(t, map[string]any{"ok": false, "error": "Unknown message type"}, got[2])
	assert.Equal(t, false, got[3]["ok"])
	assert.NotEmpty(t, got[3]["error"])
}

func TestReadMessageEOF(t *testing.T) {
	_, err := ReadMessage(&bytes.Buffer{})
	assert.ErrorIs(t, err, io.EOF)

	// truncated length
	_, err = ReadMessage(bytes.NewBuffer([]byte{1, 0}))
	assert.ErrorIs(t, err, io.EOF)

	// truncated payload
	_, err = ReadMessage(bytes.NewBuffer([]byte{10, 0, 0, 0, '{'}))
	assert.ErrorIs(t, err, io.EOF)

	// empty payload
	_, err = ReadMessage(bytes.NewBuffer([]byte{0, 0, 0, 0}))
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadMessageInvalid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(3)))
	buf.WriteString("{x}")
	_, err := ReadMessage(&buf)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))

	buf.Reset()
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(MaxMessageSize+1)))
	_, err = ReadMessage(&buf)
	assert.ErrorContains(t, err, "exceeds")
}

func TestSaveCSV(t *testing.T) {
	dir := t.TempDir()
	_, err := SaveCSV(dir, "a.csv", "not base64!")
	assert.ErrorContains(t, err, "base64")

	_, err = SaveCSV(dir, "", "")
	assert.Error(t, err)

	path, err := SaveCSV(dir, "nested/b.csv", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.csv"), path)
}
