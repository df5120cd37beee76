package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"
)

// Entry is one decoded log line.
type Entry struct {
	Time  time.Time
	Level string
	Msg   string
	Attrs map[string]any
	Raw   string
}

// Read returns at most maxLines from the end of the file at path.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Tail reads the last maxLines lines of path and decodes them.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse decodes a slog JSON line. Anything else becomes an entry whose
// message is the trimmed line.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		entry.Msg = strings.TrimSpace(line)
		return entry
	}
	if ts, ok := fields["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Time = parsed
		}
	}
	if level, ok := fields["level"].(string); ok {
		entry.Level = strings.ToUpper(level)
	}
	if msg, ok := fields["msg"].(string); ok {
		entry.Msg = msg
	}
	delete(fields, "time")
	delete(fields, "level")
	delete(fields, "msg")
	if len(fields) > 0 {
		entry.Attrs = fields
	}
	return entry
}

// Format renders the entry on one line: local time, level, message and the
// remaining attributes sorted by key.
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.In(time.Local).Format("15:04:05"))
		b.WriteByte(' ')
	}
	level := e.Level
	if level == "" {
		level = "INFO"
	}
	fmt.Fprintf(&b, "%-5s %s", level, e.Msg)
	for _, key := range slices.Sorted(maps.Keys(e.Attrs)) {
		fmt.Fprintf(&b, " %s=%v", key, e.Attrs[key])
	}
	return b.String()
}
