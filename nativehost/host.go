// Package nativehost implements the browser native messaging helper that
// saves exported statements to disk.
//
// Messages are JSON documents preceded by their length as a little endian
// uint32, in both directions.
package nativehost

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// MaxMessageSize bounds the size of an incoming message.
const MaxMessageSize = 64 << 20

// Request is a message received from the browser.
type Request struct {
	Type       string `json:"type"`
	TargetDir  string `json:"targetDir,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Base64     string `json:"base64,omitempty"`
	InitialDir string `json:"initialDir,omitempty"`
}

// Response is a message sent back to the browser.
type Response struct {
	OK    bool   `json:"ok"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// FolderResponse answers a pickFolder message. Folder is null when no folder
// was chosen.
type FolderResponse struct {
	OK     bool    `json:"ok"`
	Folder *string `json:"folder"`
}

// ErrUnknownType is reported for messages of an unknown type.
var ErrUnknownType = errors.New("Unknown message type")

// ReadMessage reads one framed message. It returns io.EOF when the input is
// closed between two messages.
func ReadMessage(r io.Reader) (Request, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Request{}, io.EOF
		}
		return Request{}, err
	}
	if n > MaxMessageSize {
		return Request{}, fmt.Errorf("message of %d bytes exceeds %d", n, MaxMessageSize)
	}
	if n == 0 {
		return Request{}, io.EOF
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Request{}, io.EOF
		}
		return Request{}, err
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("invalid message: %w", err)
	}
	return req, nil
}

// WriteMessage writes one framed message.
func WriteMessage(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Host answers native messages.
type Host struct {
	logger *zap.Logger
}

// New returns a Host logging to l (nil discards).
func New(l *zap.Logger) *Host {
	if l == nil {
		l = zap.NewNop()
	}
	return &Host{logger: l}
}

// Serve answers the messages read from r on w until r is closed or ctx is done.
func (h *Host) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := ReadMessage(r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		resp := h.Handle(req)
		if err := WriteMessage(w, resp); err != nil {
			return fmt.Errorf("cannot reply: %w", err)
		}
	}
}

// Handle answers one request. Failures are reported in the response.
func (h *Host) Handle(req Request) any {
	h.logger.Debug("native message", zap.String("type", req.Type))
	switch req.Type {
	case "pickFolder":
		// there is no folder picker: the browser falls back to its own dialog.
		return FolderResponse{OK: true}
	case "saveCsv":
		path, err := SaveCSV(req.TargetDir, req.Filename, req.Base64)
		if err != nil {
			h.logger.Warn("cannot save export", zap.Error(err))
			return Response{Error: err.Error()}
		}
		h.logger.Info("export saved", zap.String("path", path))
		return Response{OK: true, Path: path}
	default:
		return Response{Error: ErrUnknownType.Error()}
	}
}

// SaveCSV decodes data and writes it as the base name of filename under dir,
// creating dir when needed. It returns the path of the written file.
func SaveCSV(dir, filename, data string) (string, error) {
	if dir == "" {
		return "", errors.New("Missing target_dir")
	}
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	content, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("invalid base64 payload: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
