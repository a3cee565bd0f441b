package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"nimctl/internal/nimapi"
	"nimctl/pkg/types"
)

func baseModel() types.Model {
	return types.Model{ID: "llama-3.1-8b-instruct", Object: "model", Root: "llama-3.1-8b-instruct"}
}

func adapterModel() types.Model {
	return types.Model{ID: "my-lora", Object: "model", Parent: "llama-3.1-8b-instruct", Root: "llama-3.1-8b-instruct"}
}

func TestChatThroughProxy(t *testing.T) {
	up := newFakeUpstream(t, []types.Model{baseModel()}, "GPUs hum softly")
	px := newProxyFor(t, up)

	client := nimapi.New(px.URL)
	resp, err := client.ChatCompletion(context.Background(), types.ChatCompletionRequest{
		Model:    "llama-3.1-8b-instruct",
		Messages: []types.ChatMessage{{Role: "user", Content: "haiku please"}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "GPUs hum softly" {
		t.Fatalf("unexpected completion: %+v", resp.Choices)
	}
}

func TestStreamingSurvivesProxy(t *testing.T) {
	up := newFakeUpstream(t, []types.Model{baseModel()}, "one two three four")
	px := newProxyFor(t, up)

	client := nimapi.New(px.URL)
	var deltas []string
	full, err := client.ChatCompletionStream(context.Background(), types.ChatCompletionRequest{
		Model:    "llama-3.1-8b-instruct",
		Messages: []types.ChatMessage{{Role: "user", Content: "count"}},
	}, func(d string) { deltas = append(deltas, d) })
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if full != "one two three four" {
		t.Fatalf("assembled text wrong: %q", full)
	}
	if len(deltas) < 2 {
		t.Fatalf("expected multiple deltas, got %d", len(deltas))
	}
	if strings.Join(deltas, "") != full {
		t.Fatalf("delta callback diverged from return value")
	}
}

func TestReadyzMirrorsUpstream(t *testing.T) {
	up := newFakeUpstream(t, []types.Model{baseModel()}, "")
	px := newProxyFor(t, up)

	resp, err := http.Get(px.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 while upstream healthy, got %d", resp.StatusCode)
	}

	up.ready.Store(false)
	resp, err = http.Get(px.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while upstream down, got %d", resp.StatusCode)
	}
}

func TestStatusReportsAdapters(t *testing.T) {
	up := newFakeUpstream(t, []types.Model{baseModel(), adapterModel()}, "")
	px := newProxyFor(t, up)

	resp, err := http.Get(px.URL + "/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	var st types.ServerStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.Ready {
		t.Fatalf("expected ready status")
	}
	if len(st.Models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(st.Models))
	}
	found := false
	for _, m := range st.Models {
		if m.ID == "my-lora" && m.IsAdapter() {
			found = true
		}
	}
	if !found {
		t.Fatalf("adapter missing from status: %+v", st.Models)
	}
}

func TestWaitReadyAgainstProxy(t *testing.T) {
	up := newFakeUpstream(t, []types.Model{baseModel()}, "")
	up.ready.Store(false)
	px := newProxyFor(t, up)

	go func() {
		time.Sleep(150 * time.Millisecond)
		up.ready.Store(true)
	}()

	client := nimapi.New(px.URL)
	if err := client.WaitReady(context.Background(), 50*time.Millisecond, 5*time.Second); err != nil {
		t.Fatalf("wait ready: %v", err)
	}
}
