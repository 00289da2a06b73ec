package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/routerchat/internal/config"
	"github.com/mwiater/routerchat/internal/logging"
	"github.com/mwiater/routerchat/internal/openrouter"
	"github.com/mwiater/routerchat/internal/sessionlog"
	"github.com/mwiater/routerchat/models"
)

// fakeAsker returns canned results and records what it was asked.
type fakeAsker struct {
	result openrouter.Result
	err    error
	calls  []string
}

func (f *fakeAsker) Ask(ctx context.Context, question, modelID string) (openrouter.Result, error) {
	f.calls = append(f.calls, modelID+"|"+question)
	return f.result, f.err
}

type failingRecorder struct{}

func (failingRecorder) Append(string, int, string, string, string) error {
	return errors.New("disk full")
}

func logLines(t *testing.T, path string) []sessionlog.Record {
	t.Helper()
	res, err := sessionlog.Read(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if res.Skipped != 0 {
		t.Fatalf("log has %d malformed lines", res.Skipped)
	}
	return res.Records
}

func TestDispatch_RecordsEveryOutcome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	model, _ := models.Resolve("3")

	outcomes := []struct {
		asker    *fakeAsker
		wantCode int
		wantText string
	}{
		{&fakeAsker{result: openrouter.Result{StatusCode: 200, Answer: "fine"}}, 200, "fine"},
		{&fakeAsker{result: openrouter.Result{StatusCode: 503, ErrorBody: "busy"}}, 503, "Error 503: busy"},
		{&fakeAsker{err: errors.New("dial tcp: refused")}, 0, "Error 0: dial tcp: refused"},
	}
	for i, o := range outcomes {
		d := &Dispatcher{Asker: o.asker, Recorder: sessionlog.New(path), Log: logging.Discard()}
		turn := d.Dispatch(context.Background(), model, "why?")
		if turn.LogErr != nil {
			t.Fatalf("outcome %d: LogErr %v", i, turn.LogErr)
		}
		if turn.Text() != o.wantText {
			t.Errorf("outcome %d: Text() = %q, want %q", i, turn.Text(), o.wantText)
		}
		if len(o.asker.calls) != 1 || o.asker.calls[0] != model.ID+"|why?" {
			t.Errorf("outcome %d: calls = %v", i, o.asker.calls)
		}

		recs := logLines(t, path)
		if len(recs) != i+1 {
			t.Fatalf("outcome %d: %d records, want %d", i, len(recs), i+1)
		}
		last := recs[i]
		if last.StatusCode != o.wantCode || last.Response != o.wantText || last.ModelName != model.Name || last.ModelID != model.ID {
			t.Errorf("outcome %d: record %+v", i, last)
		}
	}
}

func TestDispatch_LogFailureIsReported(t *testing.T) {
	var diag bytes.Buffer
	d := &Dispatcher{
		Asker:    &fakeAsker{result: openrouter.Result{StatusCode: 200, Answer: "4"}},
		Recorder: failingRecorder{},
		Log:      logging.New(&diag, false),
	}
	model, _ := models.Resolve("1")
	turn := d.Dispatch(context.Background(), model, "2+2?")
	if turn.LogErr == nil || turn.Text() != "4" {
		t.Fatalf("turn = %+v", turn)
	}
	if !strings.Contains(diag.String(), "disk full") {
		t.Errorf("diagnostic log missing failure: %s", diag.String())
	}
}

// runREPL feeds input through a REPL backed by a real client, log file and
// the given HTTP handler.
func runREPL(t *testing.T, handler http.HandlerFunc, input string) (string, string, int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := openrouter.New(&config.Config{APIKey: "sk-test", BaseURL: srv.URL}, openrouter.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	path := filepath.Join(t.TempDir(), "conversation_log.jsonl")
	var out bytes.Buffer
	r := &REPL{
		Dispatcher: &Dispatcher{Asker: client, Recorder: sessionlog.New(path), Log: logging.Discard()},
		LogPath:    path,
		In:         strings.NewReader(input),
		Out:        &out,
	}
	m, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.State != Terminated {
		t.Fatalf("final state = %v, want Terminated", m.State)
	}
	return out.String(), path, hits
}

func TestREPL_SuccessScenario(t *testing.T) {
	out, path, hits := runREPL(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"4"}}]}`)
	}, "1\n2+2?\nquit\n")

	if hits != 1 {
		t.Fatalf("requests = %d, want 1", hits)
	}
	if !strings.Contains(out, "✓ Selected: DeepSeek R1 Turbo (Recommended)") {
		t.Errorf("selection not confirmed: %s", out)
	}
	if !strings.Contains(out, "ANSWER:\n"+answerRule+"\n4\n") {
		t.Errorf("answer not displayed: %s", out)
	}
	if !strings.Contains(out, "✓ Saved to "+path) {
		t.Errorf("save confirmation missing: %s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "Goodbye!") {
		t.Errorf("expected Goodbye! at the end: %s", out)
	}

	recs := logLines(t, path)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Question != "2+2?" || rec.StatusCode != 200 || rec.Response != "4" || rec.ModelName != "DeepSeek R1 Turbo (Recommended)" {
		t.Errorf("record = %+v", rec)
	}
}

func TestREPL_UnauthorizedScenario(t *testing.T) {
	out, path, _ := runREPL(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "unauthorized")
	}, "2\nhello\nquit\n")

	if !strings.Contains(out, "❌ Error 401: unauthorized") {
		t.Errorf("error not displayed: %s", out)
	}
	recs := logLines(t, path)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].StatusCode != 401 || !strings.Contains(recs[0].Response, "unauthorized") {
		t.Errorf("record = %+v", recs[0])
	}
	if recs[0].ModelID != "meta-llama/llama-2-70b-chat" {
		t.Errorf("model_id = %q", recs[0].ModelID)
	}
}

func TestREPL_BlankInputAndInvalidSelection(t *testing.T) {
	out, path, hits := runREPL(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, "9\n\nabc\n4\n\n   \nQUIT\n")

	if hits != 0 {
		t.Fatalf("requests = %d, want 0", hits)
	}
	if got := strings.Count(out, "Invalid choice. Please enter a number between 1 and 6."); got != 3 {
		t.Errorf("invalid-choice messages = %d, want 3: %s", got, out)
	}
	if got := strings.Count(out, "Please enter a question."); got != 2 {
		t.Errorf("empty-question messages = %d, want 2", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("log file should not exist, stat err = %v", err)
	}
}

func TestREPL_QuitStopsPrompting(t *testing.T) {
	out, path, hits := runREPL(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"x"}}]}`)
	}, "5\nQUIT\nafter quit\n")

	if hits != 0 {
		t.Errorf("requests = %d, want 0", hits)
	}
	if got := strings.Count(out, "Enter your question"); got != 1 {
		t.Errorf("question prompts = %d, want 1", got)
	}
	if recs := logLines(t, path); len(recs) != 0 {
		t.Errorf("records = %d, want 0", len(recs))
	}
}

func TestREPL_LogGrowsByTurnCount(t *testing.T) {
	out, path, hits := runREPL(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct{ Content string } `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Messages[0].Content == "fail" {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "bad gateway")
			return
		}
		_, _ = io.WriteString(w, `{"choices":[]}`)
	}, "6\none\n\nfail\nthree\n")

	if hits != 3 {
		t.Fatalf("requests = %d, want 3", hits)
	}
	recs := logLines(t, path)
	if len(recs) != 3 {
		t.Fatalf("records = %d, want 3", len(recs))
	}
	if recs[0].Response != openrouter.NoContent || recs[1].Response != "Error 502: bad gateway" || recs[2].Question != "three" {
		t.Errorf("records = %+v", recs)
	}
	if !strings.Contains(out, openrouter.NoContent) {
		t.Errorf("parse message not displayed: %s", out)
	}
}

func TestREPL_EndOfInputDuringSelection(t *testing.T) {
	out, _, hits := runREPL(t, func(w http.ResponseWriter, r *http.Request) {}, "")
	if hits != 0 {
		t.Errorf("requests = %d", hits)
	}
	if !strings.Contains(out, "AVAILABLE FREE MODELS") {
		t.Errorf("menu not shown: %s", out)
	}
}

func TestREPL_LogWriteFailureIsShown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"4"}}]}`)
	}))
	t.Cleanup(srv.Close)
	client, _ := openrouter.New(&config.Config{APIKey: "k", BaseURL: srv.URL}, openrouter.WithHTTPClient(srv.Client()))

	var out bytes.Buffer
	r := &REPL{
		Dispatcher: &Dispatcher{Asker: client, Recorder: failingRecorder{}, Log: logging.Discard()},
		LogPath:    "conversation_log.jsonl",
		In:         strings.NewReader("1\n2+2?\nquit\n"),
		Out:        &out,
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "⚠ Could not save to conversation_log.jsonl: disk full") {
		t.Errorf("warning missing: %s", out.String())
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Errorf("session did not continue after log failure: %s", out.String())
	}
}

func TestREPL_VeryLongQuestionDoesNotEndSession(t *testing.T) {
	long := strings.Repeat("a", 2<<20)
	_, path, hits := runREPL(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"4"}}]}`)
	}, "1\n"+long+"\n2+2?\nquit\n")

	if hits != 2 {
		t.Fatalf("requests = %d, want 2", hits)
	}
	recs := logLines(t, path)
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if len(recs[0].Question) != len(long) || recs[1].Question != "2+2?" {
		t.Errorf("questions = %d bytes, %q", len(recs[0].Question), recs[1].Question)
	}
}

func TestREPL_LastLineWithoutNewline(t *testing.T) {
	_, path, hits := runREPL(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}, "2\r\nhello")

	if hits != 1 {
		t.Fatalf("requests = %d, want 1", hits)
	}
	if recs := logLines(t, path); len(recs) != 1 || recs[0].Question != "hello" {
		t.Errorf("records = %+v", recs)
	}
}

func TestREPL_SavedNoticeOnlyForAnswers(t *testing.T) {
	out, path, _ := runREPL(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, "slow down")
	}, "3\nhi\nquit\n")

	if strings.Contains(out, "Saved to") {
		t.Errorf("failed turn printed a save confirmation: %s", out)
	}
	if recs := logLines(t, path); len(recs) != 1 || recs[0].StatusCode != http.StatusTooManyRequests {
		t.Errorf("failed turn not logged: %+v", recs)
	}
}
