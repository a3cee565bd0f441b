package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"nimctl/internal/nimapi"
	"nimctl/internal/proxy"
	"nimctl/pkg/types"
)

// fakeUpstream mimics the OpenAI-compatible surface of an inference server:
// readiness, model listing, and chat completions in both modes.
type fakeUpstream struct {
	srv    *httptest.Server
	models []types.Model
	ready  atomic.Bool
	reply  string
}

func newFakeUpstream(t *testing.T, models []types.Model, reply string) *fakeUpstream {
	t.Helper()
	u := &fakeUpstream{models: models, reply: reply}
	u.ready.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if !u.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.ModelList{Object: "list", Data: u.models})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if !req.Stream {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(types.ChatCompletionResponse{
				Object: "chat.completion",
				Model:  req.Model,
				Choices: []types.ChatCompletionChoice{{
					Message:      types.ChatMessage{Role: "assistant", Content: u.reply},
					FinishReason: "stop",
				}},
			})
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fl, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("upstream writer is not a flusher")
		}
		for _, frag := range splitWords(u.reply) {
			chunk := types.ChatCompletionChunk{
				Object:  "chat.completion.chunk",
				Model:   req.Model,
				Choices: []types.ChunkChoice{{Delta: types.ChunkDelta{Content: frag}}},
			}
			b, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", b)
			fl.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		fl.Flush()
	})

	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

// splitWords cuts the reply into per-word fragments, spaces attached, so the
// concatenation of all deltas reproduces the input exactly.
func splitWords(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// newProxyFor serves the observability mux in front of the upstream.
func newProxyFor(t *testing.T, upstream *fakeUpstream) *httptest.Server {
	t.Helper()
	target, err := url.Parse(upstream.srv.URL)
	if err != nil {
		t.Fatalf("parse upstream url: %v", err)
	}
	mux := proxy.NewMux(nimapi.New(upstream.srv.URL), target)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
