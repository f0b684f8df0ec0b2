package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	memstore "github.com/warp/shift-engine/engine/store"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(NewHandler(memstore.NewTxMemory())))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func getJSONList(t *testing.T, url string) []map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d, want 200", url, resp.StatusCode)
	}
	var decoded []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return decoded
}

func mustStatus(t *testing.T, resp *http.Response, want int, body map[string]any) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s: status %d, want %d (body: %v)", resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

// seedCatalog creates a role with Mon-Fri day shifts and one employee.
func seedCatalog(t *testing.T, base string) {
	t.Helper()

	role := map[string]any{
		"id":                 "eng",
		"name":               "Engineering",
		"location":           "berlin",
		"work_days":          []int{1, 2, 3, 4, 5},
		"daily_work_hours":   8,
		"weekly_hours_limit": 40,
	}
	resp, body := doJSON(t, http.MethodPost, base+"/api/roles", role, nil)
	mustStatus(t, resp, http.StatusCreated, body)

	days := []struct {
		id  string
		dow int
	}{{"shift-mon", 1}, {"shift-tue", 2}, {"shift-wed", 3}, {"shift-thu", 4}, {"shift-fri", 5}}
	for _, d := range days {
		shift := map[string]any{
			"id":          d.id,
			"name":        "Day shift",
			"day_of_week": d.dow,
			"start":       "09:00",
			"end":         "17:00",
		}
		resp, body := doJSON(t, http.MethodPost, base+"/api/roles/eng/shifts", shift, nil)
		mustStatus(t, resp, http.StatusCreated, body)
	}

	emp := map[string]any{
		"id":                          "emp-alice",
		"role_id":                     "eng",
		"name":                        "Alice",
		"yearly_paid_leave_allowance": 20,
	}
	resp, body = doJSON(t, http.MethodPost, base+"/api/employees", emp, nil)
	mustStatus(t, resp, http.StatusCreated, body)
}

// =============================================================================
// VALIDATION AND ERROR MAPPING TESTS
// =============================================================================

func TestAPI_InvalidBody_Returns400(t *testing.T) {
	// GIVEN: A role payload missing required fields
	// WHEN: POSTing it
	// THEN: 400 with an error envelope

	srv := newTestServer(t)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/roles", map[string]any{"name": "x"}, nil)
	mustStatus(t, resp, http.StatusBadRequest, body)
	if body["error"] == "" {
		t.Error("Expected an error message in the envelope")
	}
}

func TestAPI_BadDate_Returns400(t *testing.T) {
	// GIVEN: A generate request with a malformed date
	// WHEN: POSTing it
	// THEN: 400

	srv := newTestServer(t)
	seedCatalog(t, srv.URL)

	req := map[string]any{"role_id": "eng", "from": "06/02/2025", "to": "2025-06-06"}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/schedules/generate", req, nil)
	mustStatus(t, resp, http.StatusBadRequest, body)
}

func TestAPI_UnknownRole_Returns404(t *testing.T) {
	// GIVEN: A generate request for a role that doesn't exist
	// WHEN: POSTing it
	// THEN: 404

	srv := newTestServer(t)
	req := map[string]any{"role_id": "ghost", "from": "2025-06-02", "to": "2025-06-06"}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/schedules/generate", req, nil)
	mustStatus(t, resp, http.StatusNotFound, body)
}

func TestAPI_DuplicateClockIn_Returns409(t *testing.T) {
	// GIVEN: An employee already clocked in today
	// WHEN: Clocking in again
	// THEN: 409

	srv := newTestServer(t)
	seedCatalog(t, srv.URL)

	clock := map[string]any{
		"employee_id": "emp-alice",
		"date":        "2025-06-02",
		"timestamp":   "2025-06-02T09:00:00Z",
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/attendance/clock-in", clock, nil)
	mustStatus(t, resp, http.StatusCreated, body)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/attendance/clock-in", clock, nil)
	mustStatus(t, resp, http.StatusConflict, body)
}

func TestAPI_ClockOutBeforeClockIn_Returns422(t *testing.T) {
	// GIVEN: A clock-in at 09:00
	// WHEN: Clocking out at 08:00
	// THEN: 422

	srv := newTestServer(t)
	seedCatalog(t, srv.URL)

	in := map[string]any{
		"employee_id": "emp-alice", "date": "2025-06-02", "timestamp": "2025-06-02T09:00:00Z",
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/attendance/clock-in", in, nil)
	mustStatus(t, resp, http.StatusCreated, body)

	out := map[string]any{
		"employee_id": "emp-alice", "date": "2025-06-02", "timestamp": "2025-06-02T08:00:00Z",
	}
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/attendance/clock-out", out, nil)
	mustStatus(t, resp, http.StatusUnprocessableEntity, body)
}

func TestAPI_Approval_RequiresActorHeader(t *testing.T) {
	// GIVEN: A pending leave request
	// WHEN: Deciding without an X-Actor header
	// THEN: 400

	srv := newTestServer(t)
	seedCatalog(t, srv.URL)

	lv := map[string]any{
		"employee_id": "emp-alice", "date": "2025-06-10", "type": "PAID", "duration": "FULL_DAY",
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/leave", lv, nil)
	mustStatus(t, resp, http.StatusCreated, body)
	id := body["id"].(string)

	decision := map[string]any{"decision": "APPROVED"}
	resp, body = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/approvals/leave/%s", srv.URL, id), decision, nil)
	mustStatus(t, resp, http.StatusBadRequest, body)
}

func TestAPI_CatalogLists_UseWireShapes(t *testing.T) {
	// GIVEN: A seeded catalog
	// WHEN: Listing roles and shift templates
	// THEN: Quantities come back as plain numbers and windows as HH:MM strings

	srv := newTestServer(t)
	seedCatalog(t, srv.URL)

	roles := getJSONList(t, srv.URL+"/api/roles")
	if len(roles) != 1 {
		t.Fatalf("roles = %d, want 1", len(roles))
	}
	role := roles[0]
	if got := role["daily_work_hours"]; got != 8.0 {
		t.Errorf("daily_work_hours = %v, want 8", got)
	}
	if role["employment_type"] != "FULL_TIME" {
		t.Errorf("employment_type = %v, want FULL_TIME", role["employment_type"])
	}

	shifts := getJSONList(t, srv.URL+"/api/roles/eng/shifts")
	if len(shifts) != 5 {
		t.Fatalf("shifts = %d, want 5", len(shifts))
	}
	shift := shifts[0] // ID order: shift-fri first
	if shift["id"] != "shift-fri" || shift["day_of_week"] != 5.0 {
		t.Errorf("first shift = %v/%v, want shift-fri on day 5", shift["id"], shift["day_of_week"])
	}
	if shift["start"] != "09:00" || shift["end"] != "17:00" {
		t.Errorf("window = %v-%v, want 09:00-17:00", shift["start"], shift["end"])
	}
}

func TestAPI_Health(t *testing.T) {
	// GIVEN: A running server
	// WHEN: GET /api/health
	// THEN: 200 ok

	srv := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil, nil)
	mustStatus(t, resp, http.StatusOK, body)
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
}
