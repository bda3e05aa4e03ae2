package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Sink is a push transport for events, keyed by topic.
type Sink interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// Forward drains sub into sink until ctx is done or the subscription closes.
// Each event is JSON encoded and written to the topic named after its kind.
// Sink errors are logged and the event is skipped.
func Forward(ctx context.Context, sub *Subscription, sink Sink, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			msg, err := json.Marshal(event)
			if err != nil {
				logger.Error("error serializing event", "kind", event.Kind, "err", err)
				continue
			}
			if err := sink.WriteMessage(event.Kind, msg); err != nil {
				logger.Warn("failed to write event", "sink", sub.Name(), "kind", event.Kind, "err", err)
			}
		}
	}
}

// ConsoleSink prints "[topic] message" lines.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleSink(out io.Writer) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSink{out: out}
}

func (c *ConsoleSink) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.out, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleSink) Close() error { return nil }

// FileSink appends newline-delimited JSON to one file per topic under dir.
type FileSink struct {
	mu    sync.Mutex
	dir   string
	files map[string]*os.File
}

func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create event directory %s: %w", dir, err)
	}
	return &FileSink{dir: dir, files: make(map[string]*os.File)}, nil
}

func (f *FileSink) WriteMessage(topic string, msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, ok := f.files[topic]
	if !ok {
		var err error
		file, err = os.OpenFile(filepath.Join(f.dir, topic+".jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create file for topic %s: %w", topic, err)
		}
		f.files[topic] = file
	}

	if _, err := file.Write(append(msg, '\n')); err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", topic, err)
	}
	return nil
}

func (f *FileSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var firstErr error
	for topic, file := range f.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close file for topic %s: %w", topic, err)
		}
		delete(f.files, topic)
	}
	return firstErr
}
