package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pedigree-app/pedigree/pkg/person"
	"github.com/pedigree-app/pedigree/pkg/syncq"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   []byte
}

// newPushServer records every request and answers 200.
func newPushServer(t *testing.T) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
			body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestPushTree_DeltaSendsCoalescedPatch(t *testing.T) {
	srv, reqs := newPushServer(t)
	client := syncq.NewClient(srv.URL, "sub-1", "tok-1")

	base := person.Graph{
		"me":  {ID: "me", Name: "Alex"},
		"sis": {ID: "sis", Name: "Julia"},
	}
	current := person.Graph{
		"me":  {ID: "me", Name: "Alexander"},
		"kid": {ID: "kid", Name: "Noah"},
	}

	sent, err := pushTree(context.Background(), client, current, base, false)
	if err != nil {
		t.Fatalf("pushTree() error = %v", err)
	}
	if sent != 3 {
		t.Errorf("sent = %d, want 2 upserts and 1 delete", sent)
	}
	if len(*reqs) != 1 {
		t.Fatalf("server saw %d requests, want 1", len(*reqs))
	}

	req := (*reqs)[0]
	if req.method != http.MethodPatch || req.path != "/v1/pedigree/sub-1" {
		t.Errorf("request = %s %s, want PATCH /v1/pedigree/sub-1", req.method, req.path)
	}
	if req.auth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want bearer token", req.auth)
	}

	var patch struct {
		Upserts map[string]*person.Person `json:"upserts"`
		Deletes []string                  `json:"deletes"`
	}
	if err := json.Unmarshal(req.body, &patch); err != nil {
		t.Fatalf("decode patch body: %v", err)
	}
	if len(patch.Deletes) != 1 || patch.Deletes[0] != "sis" {
		t.Errorf("Deletes = %v, want [sis]", patch.Deletes)
	}
	if len(patch.Upserts) != 2 || patch.Upserts["me"] == nil || patch.Upserts["kid"] == nil {
		t.Errorf("Upserts = %v, want me and kid", patch.Upserts)
	}
	if patch.Upserts["me"] != nil && patch.Upserts["me"].Name != "Alexander" {
		t.Errorf("me upsert Name = %q, want rename carried", patch.Upserts["me"].Name)
	}
}

func TestPushTree_FullReplaceWithoutBase(t *testing.T) {
	srv, reqs := newPushServer(t)
	client := syncq.NewClient(srv.URL, "sub-1", "tok-1")

	g := person.Graph{
		"me":  {ID: "me", Name: "Alex"},
		"dad": {ID: "dad", Name: "Robert"},
	}

	sent, err := pushTree(context.Background(), client, g, nil, true)
	if err != nil {
		t.Fatalf("pushTree() error = %v", err)
	}
	if sent != len(g) {
		t.Errorf("sent = %d, want whole tree %d", sent, len(g))
	}
	if len(*reqs) != 1 {
		t.Fatalf("server saw %d requests, want 1", len(*reqs))
	}
	if req := (*reqs)[0]; req.method != http.MethodPut || req.path != "/v1/pedigree/sub-1" {
		t.Errorf("request = %s %s, want PUT /v1/pedigree/sub-1", req.method, req.path)
	}
}

func TestPushTree_NoChangesSendsNothing(t *testing.T) {
	srv, reqs := newPushServer(t)
	client := syncq.NewClient(srv.URL, "sub-1", "tok-1")

	base := person.Graph{"me": {ID: "me", Name: "Alex"}}

	sent, err := pushTree(context.Background(), client, base.Clone(), base, false)
	if err != nil {
		t.Fatalf("pushTree() error = %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0 for an unchanged tree", sent)
	}
	if len(*reqs) != 0 {
		t.Errorf("server saw %d requests, want none", len(*reqs))
	}
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if g, err := loadSnapshot(); err != nil || g != nil {
		t.Fatalf("loadSnapshot() before first sync = (%v, %v), want (nil, nil)", g, err)
	}

	g := person.Graph{"me": {ID: "me", Name: "Alex"}}
	if err := saveSnapshot(g); err != nil {
		t.Fatalf("saveSnapshot() error = %v", err)
	}

	got, err := loadSnapshot()
	if err != nil {
		t.Fatalf("loadSnapshot() error = %v", err)
	}
	if got.Person("me") == nil || got.Person("me").Name != "Alex" {
		t.Errorf("cached snapshot = %v, want the saved tree", got)
	}

	if err := deleteSnapshot(); err != nil {
		t.Fatalf("deleteSnapshot() error = %v", err)
	}
	if g, err := loadSnapshot(); err != nil || g != nil {
		t.Errorf("loadSnapshot() after delete = (%v, %v), want (nil, nil)", g, err)
	}
}
