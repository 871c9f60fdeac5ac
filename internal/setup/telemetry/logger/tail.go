package logger

// tail keeps the most recent lines written to a log file.
type tail struct {
	lines []string
	next  int // index of the next write
	count int // lines currently held
}

func newTail(capacity int) *tail {
	return &tail{lines: make([]string, max(capacity, 1))}
}

// push stores a line, overwriting the oldest one once full.
func (t *tail) push(line string) {
	t.lines[t.next] = line
	t.next = (t.next + 1) % len(t.lines)

	if t.count < len(t.lines) {
		t.count++
	}
}

// snapshot returns the held lines oldest first.
func (t *tail) snapshot() []string {
	out := make([]string, 0, t.count)
	start := (t.next - t.count + len(t.lines)) % len(t.lines)

	for i := range t.count {
		out = append(out, t.lines[(start+i)%len(t.lines)])
	}

	return out
}
