package gdocs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type recordedUpdate struct {
	Requests []struct {
		InsertText struct {
			Text                 string           `json:"text"`
			EndOfSegmentLocation *json.RawMessage `json:"endOfSegmentLocation"`
		} `json:"insertText"`
	} `json:"requests"`
}

// fakeDocsServer emulates the two Docs API surfaces the publisher uses:
// document creation and batch updates.
func fakeDocsServer(t *testing.T, updates *[]recordedUpdate, failAfter int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/v1/documents":
			var doc struct {
				Title string `json:"title"`
			}
			if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
				t.Errorf("bad create body: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"documentId": "doc123",
				"title":      doc.Title,
			})
		case r.Method == "POST" && r.URL.Path == "/v1/documents/doc123:batchUpdate":
			if failAfter > 0 && len(*updates) >= failAfter {
				http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
				return
			}
			var upd recordedUpdate
			if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
				t.Errorf("bad batchUpdate body: %v", err)
			}
			*updates = append(*updates, upd)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"documentId":"doc123"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func testPublisher(t *testing.T, srv *httptest.Server) *Publisher {
	t.Helper()
	pub, err := NewPublisher(context.Background(), nil, zap.NewNop(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("failed to build publisher: %v", err)
	}
	return pub
}

func TestPublisher_Create(t *testing.T) {
	var updates []recordedUpdate
	srv := fakeDocsServer(t, &updates, 0)
	defer srv.Close()

	pub := testPublisher(t, srv)
	id, err := pub.Create(context.Background(), "Amalgamated Text Files")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "doc123" {
		t.Errorf("expected document ID doc123, got %q", id)
	}
}

func TestPublisher_AppendSendsChunksInOrder(t *testing.T) {
	var updates []recordedUpdate
	srv := fakeDocsServer(t, &updates, 0)
	defer srv.Close()

	pub := testPublisher(t, srv)
	text := "aaaaabbbbbcc"
	if err := pub.Append(context.Background(), "doc123", text, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(updates) != 3 {
		t.Fatalf("expected one request per chunk (3), got %d", len(updates))
	}
	var rebuilt strings.Builder
	for i, upd := range updates {
		if len(upd.Requests) != 1 {
			t.Fatalf("update %d carries %d requests, expected 1", i, len(upd.Requests))
		}
		ins := upd.Requests[0].InsertText
		if ins.EndOfSegmentLocation == nil {
			t.Errorf("update %d must insert at the end of the segment", i)
		}
		rebuilt.WriteString(ins.Text)
	}
	if rebuilt.String() != text {
		t.Errorf("chunks arrived out of order or incomplete: %q", rebuilt.String())
	}
}

func TestPublisher_AppendStopsOnFirstFailure(t *testing.T) {
	var updates []recordedUpdate
	srv := fakeDocsServer(t, &updates, 1) // second update fails
	defer srv.Close()

	pub := testPublisher(t, srv)
	err := pub.Append(context.Background(), "doc123", "aaaaabbbbbccccc", 5)
	if err == nil {
		t.Fatal("expected the remote failure to propagate")
	}
	if len(updates) != 1 {
		t.Errorf("expected no further chunks after the failure, got %d successful updates", len(updates))
	}
}

func TestPublisher_AppendEmptyText(t *testing.T) {
	var updates []recordedUpdate
	srv := fakeDocsServer(t, &updates, 0)
	defer srv.Close()

	pub := testPublisher(t, srv)
	if err := pub.Append(context.Background(), "doc123", "", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("expected no requests for empty text, got %d", len(updates))
	}
}

func TestDocumentURL(t *testing.T) {
	got := DocumentURL("doc123")
	want := "https://docs.google.com/document/d/doc123/edit"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
