package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/store"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	s := New(Options{Store: st, Engine: layout.NewEngine(layout.SequentialIDs("w"))})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type snapshotResponse struct {
	Name    string      `json:"name"`
	Version int64       `json:"version"`
	Tree    layout.Tree `json:"tree"`
}

type opResult struct {
	Snapshot snapshotResponse `json:"snapshot"`
	Created  string           `json:"created"`
	Changed  bool             `json:"changed"`
	Ignored  bool             `json:"ignored"`
	Reason   string           `json:"reason"`
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestCreateGetDelete(t *testing.T) {
	ts, st := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/workspaces/main?orientation=vertical", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	snap := decode[snapshotResponse](t, resp)
	if snap.Version != 1 || snap.Tree.Orientation() != layout.Vertical {
		t.Errorf("created snapshot = version %d, orientation %s", snap.Version, snap.Tree.Orientation())
	}

	if resp := do(t, ts, http.MethodPost, "/workspaces/main", ""); resp.StatusCode != http.StatusConflict {
		t.Errorf("second create status = %d, want 409", resp.StatusCode)
	}

	resp = do(t, ts, http.MethodGet, "/workspaces/main", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	if got := decode[snapshotResponse](t, resp); got.Name != "main" {
		t.Errorf("get name = %q, want main", got.Name)
	}

	resp = do(t, ts, http.MethodGet, "/workspaces", "")
	list := decode[map[string][]string](t, resp)
	if got := list["workspaces"]; len(got) != 1 || got[0] != "main" {
		t.Errorf("list = %v, want [main]", got)
	}

	if resp := do(t, ts, http.MethodDelete, "/workspaces/main", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	if rec, err := st.Get(t.Context(), "main"); err != nil || rec != nil {
		t.Errorf("Get after delete = %v, %v, want nil record", rec, err)
	}
	resp = do(t, ts, http.MethodGet, "/workspaces/main", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", resp.StatusCode)
	}
	if got := decode[errorResponse](t, resp); got.Error.Code != string(perrors.ErrCodeWorkspaceNotFound) {
		t.Errorf("error code = %q, want %s", got.Error.Code, perrors.ErrCodeWorkspaceNotFound)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	ts, _ := newTestServer(t)
	tests := []struct {
		name string
		path string
		code perrors.Code
	}{
		{"Orientation", "/workspaces/main?orientation=diagonal", perrors.ErrCodeInvalidInput},
		{"Name", "/workspaces/bad..name", perrors.ErrCodeInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, http.MethodPost, tt.path, "")
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if got := decode[errorResponse](t, resp); got.Error.Code != string(tt.code) {
				t.Errorf("code = %q, want %s", got.Error.Code, tt.code)
			}
		})
	}
}

func TestOps(t *testing.T) {
	ts, _ := newTestServer(t)

	steps := []struct {
		body    string
		created string
		changed bool
		ignored bool
		leaves  []string
	}{
		{
			body:    `{"op":"insert_root","id":"editor"}`,
			created: "editor",
			changed: true,
			leaves:  []string{"editor"},
		},
		{
			body:    `{"op":"insert_at","target":"editor","position":"bottom","id":"shell"}`,
			created: "shell",
			changed: true,
			leaves:  []string{"editor", "shell"},
		},
		{
			body:    `{"op":"drop","id":"shell","target":"editor","position":"center"}`,
			changed: true,
			leaves:  []string{"shell", "editor"},
		},
		{
			body:    `{"op":"remove","id":"ghost"}`,
			ignored: true,
			leaves:  []string{"shell", "editor"},
		},
		{
			body:    `{"op":"swap","id":"editor","with":"editor"}`,
			leaves:  []string{"shell", "editor"},
		},
	}

	for i, st := range steps {
		resp := do(t, ts, http.MethodPost, "/workspaces/main/ops", st.body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("step %d: status = %d, want 200", i, resp.StatusCode)
		}
		got := decode[opResult](t, resp)
		if got.Created != st.created || got.Changed != st.changed || got.Ignored != st.ignored {
			t.Errorf("step %d: result = %+v, want created=%q changed=%v ignored=%v",
				i, got, st.created, st.changed, st.ignored)
		}
		if st.ignored && got.Reason == "" {
			t.Errorf("step %d: ignored result has no reason", i)
		}
		leaves := got.Snapshot.Tree.Leaves()
		if strings.Join(leaves, ",") != strings.Join(st.leaves, ",") {
			t.Errorf("step %d: leaves = %v, want %v", i, leaves, st.leaves)
		}
	}
}

func TestOpErrors(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, ts, http.MethodPost, "/workspaces/main/ops", `{"op":"insert_root","id":"a"}`)

	tests := []struct {
		name   string
		body   string
		status int
		code   perrors.Code
	}{
		{"Malformed", `{"op":`, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"UnknownField", `{"op":"remove","id":"a","extra":1}`, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"UnknownOp", `{"op":"explode"}`, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"CenterInsert", `{"op":"insert_at","target":"a","position":"center"}`, http.StatusBadRequest, perrors.ErrCodeInvalidPosition},
		{"DuplicateID", `{"op":"insert_root","id":"a"}`, http.StatusBadRequest, perrors.ErrCodeInvalidID},
		{"SelfMove", `{"op":"move","id":"a","target":"a","position":"left"}`, http.StatusBadRequest, perrors.ErrCodeInvalidPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, http.MethodPost, "/workspaces/main/ops", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decode[errorResponse](t, resp); got.Error.Code != string(tt.code) {
				t.Errorf("code = %q, want %s (%s)", got.Error.Code, tt.code, got.Error.Message)
			}
		})
	}
}

func TestRenderEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, ts, http.MethodPost, "/workspaces/main/ops", `{"op":"insert_root","id":"editor"}`)
	do(t, ts, http.MethodPost, "/workspaces/main/ops", `{"op":"insert_root","id":"shell"}`)

	resp := do(t, ts, http.MethodGet, "/workspaces/main/dot?detailed=true", "")
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("dot Content-Type = %q", ct)
	}
	buf := new(strings.Builder)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "digraph layout") {
		t.Errorf("dot body = %q, want digraph", buf.String())
	}

	resp = do(t, ts, http.MethodGet, "/workspaces/main/text?width=40&height=6", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("text status = %d, want 200", resp.StatusCode)
	}
	buf.Reset()
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, "editor") || !strings.Contains(out, "shell") {
		t.Errorf("text body missing panes:\n%s", out)
	}

	if resp := do(t, ts, http.MethodGet, "/workspaces/main/text?width=0", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("text width=0 status = %d, want 400", resp.StatusCode)
	}
	if resp := do(t, ts, http.MethodGet, "/workspaces/other/dot", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("dot for missing workspace status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code perrors.Code
		want int
	}{
		{perrors.ErrCodeInvalidID, http.StatusBadRequest},
		{perrors.ErrCodeNotFound, http.StatusNotFound},
		{perrors.ErrCodeNotALeaf, http.StatusUnprocessableEntity},
		{perrors.ErrCodeConflict, http.StatusConflict},
		{perrors.ErrCodeCorruptTree, http.StatusInternalServerError},
		{perrors.ErrCodeStorage, http.StatusServiceUnavailable},
		{perrors.ErrCodeUnsupported, http.StatusNotImplemented},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.code); got != tt.want {
			t.Errorf("StatusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
