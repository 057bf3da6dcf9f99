package stream

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestSSEWriterFraming(t *testing.T) {
	var buf bytes.Buffer
	w := NewSSEWriter(bufio.NewWriter(&buf))

	if err := w.Token(TokenEvent{Text: "hello", Seq: 1}); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if err := w.Final(FinalEvent{Message: "hello", RequestID: "req-1"}); err != nil {
		t.Fatalf("Final: %v", err)
	}
	if err := w.End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	out := buf.String()
	frames := strings.Split(strings.TrimSuffix(out, "\n\n"), "\n\n")
	if len(frames) != 3 {
		t.Fatalf("frame count = %d, output:\n%s", len(frames), out)
	}

	if !strings.HasPrefix(frames[0], "event: token\ndata: ") {
		t.Errorf("token frame = %q", frames[0])
	}
	if !strings.Contains(frames[0], `"text":"hello"`) || !strings.Contains(frames[0], `"seq":1`) {
		t.Errorf("token payload = %q", frames[0])
	}

	if !strings.HasPrefix(frames[1], "event: final\ndata: ") {
		t.Errorf("final frame = %q", frames[1])
	}
	if !strings.Contains(frames[1], `"request_id":"req-1"`) {
		t.Errorf("final payload = %q", frames[1])
	}

	if frames[2] != "event: end\ndata: {}" {
		t.Errorf("end frame = %q", frames[2])
	}
}

func TestSSEWriterErrorFinal(t *testing.T) {
	var buf bytes.Buffer
	w := NewSSEWriter(bufio.NewWriter(&buf))

	if err := w.Final(NewErrorFinal(CodeRateLimited, "slow down", true, "req-2")); err != nil {
		t.Fatalf("Final: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"code":"RATE_LIMITED"`) {
		t.Errorf("error payload missing code: %q", out)
	}
	if !strings.Contains(out, `"retryable":true`) {
		t.Errorf("error payload missing retryable flag: %q", out)
	}
}
