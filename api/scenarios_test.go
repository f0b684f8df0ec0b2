/*
scenarios_test.go - End-to-end flows through the HTTP surface

Each test walks one realistic sequence across several endpoints: seed the
catalog, generate a week, work it, and settle the resulting requests.
*/
package api

import (
	"fmt"
	"net/http"
	"testing"
)

// =============================================================================
// FULL WEEK: GENERATE, WORK, DETECT, APPROVE
// =============================================================================

func TestScenario_GenerateWorkAndApproveOvertime(t *testing.T) {
	// GIVEN: A seeded Mon-Fri role with one employee
	// WHEN: Generating a week, working Monday 09:00-17:30, and approving
	//       the detected overtime
	// THEN: Five rows exist, the 0.5h entry is typed NORMAL and settles APPROVED

	srv := newTestServer(t)
	seedCatalog(t, srv.URL)

	gen := map[string]any{"role_id": "eng", "from": "2025-06-02", "to": "2025-06-06"}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/schedules/generate", gen, nil)
	mustStatus(t, resp, http.StatusOK, body)
	if got := body["created"].(float64); got != 5 {
		t.Fatalf("created = %v, want 5", got)
	}

	in := map[string]any{
		"employee_id": "emp-alice", "date": "2025-06-02", "timestamp": "2025-06-02T09:00:00Z",
	}
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/attendance/clock-in", in, nil)
	mustStatus(t, resp, http.StatusCreated, body)

	out := map[string]any{
		"employee_id": "emp-alice", "date": "2025-06-02", "timestamp": "2025-06-02T17:30:00Z",
	}
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/attendance/clock-out", out, nil)
	mustStatus(t, resp, http.StatusOK, body)

	att := body["attendance"].(map[string]any)
	if got := att["worked_hours"].(float64); got != 8.5 {
		t.Errorf("worked_hours = %v, want 8.5", got)
	}

	ot, ok := body["overtime"].(map[string]any)
	if !ok {
		t.Fatal("Expected a detected overtime entry in the clock-out response")
	}
	if ot["type"] != "NORMAL" || ot["status"] != "PENDING" {
		t.Errorf("overtime type/status = %v/%v, want NORMAL/PENDING", ot["type"], ot["status"])
	}
	if got := ot["actual_hours"].(float64); got != 0.5 {
		t.Errorf("actual_hours = %v, want 0.5", got)
	}

	decision := map[string]any{"decision": "APPROVED"}
	resp, body = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/approvals/overtime/%s", srv.URL, ot["id"]), decision,
		map[string]string{"X-Actor": "mgr-bob"})
	mustStatus(t, resp, http.StatusOK, body)
	if body["status"] != "APPROVED" || body["resolved_by"] != "mgr-bob" {
		t.Errorf("settled entry = %v, want APPROVED by mgr-bob", body)
	}
}

// =============================================================================
// HOLIDAY WEEK
// =============================================================================

func TestScenario_HolidayWeek(t *testing.T) {
	// GIVEN: A national holiday on Wednesday
	// WHEN: Generating the week
	// THEN: Four rows and one HOLIDAY skip in the summary

	srv := newTestServer(t)
	seedCatalog(t, srv.URL)

	holiday := map[string]any{
		"id": "hol-1", "name": "Founding Day", "date": "2025-06-04", "type": "NATIONAL",
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/holidays", holiday, nil)
	mustStatus(t, resp, http.StatusCreated, body)

	gen := map[string]any{"role_id": "eng", "from": "2025-06-02", "to": "2025-06-06"}
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/schedules/generate", gen, nil)
	mustStatus(t, resp, http.StatusOK, body)

	if got := body["created"].(float64); got != 4 {
		t.Errorf("created = %v, want 4", got)
	}
	skips := body["skipped"].([]any)
	if len(skips) != 1 {
		t.Fatalf("skipped = %d entries, want 1", len(skips))
	}
	skip := skips[0].(map[string]any)
	if skip["reason"] != "HOLIDAY" || skip["date"] != "2025-06-04" {
		t.Errorf("skip = %v, want HOLIDAY on 2025-06-04", skip)
	}
}

// =============================================================================
// LEAVE LIFECYCLE AND BALANCES
// =============================================================================

func TestScenario_LeaveApprovalMovesBalance(t *testing.T) {
	// GIVEN: A 20-day allowance
	// WHEN: Requesting a paid day, checking balances before and after approval
	// THEN: The balance only moves once the manager approves

	srv := newTestServer(t)
	seedCatalog(t, srv.URL)

	lv := map[string]any{
		"employee_id": "emp-alice", "date": "2025-06-10", "type": "PAID", "duration": "FULL_DAY",
		"reason": "family visit",
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/leave", lv, nil)
	mustStatus(t, resp, http.StatusCreated, body)
	id := body["id"].(string)

	balancesURL := srv.URL + "/api/employees/emp-alice/balances?year=2025"
	resp, body = doJSON(t, http.MethodGet, balancesURL, nil, nil)
	mustStatus(t, resp, http.StatusOK, body)
	if got := body["paid_remaining"].(float64); got != 20 {
		t.Errorf("pending request must not move the balance, got %v", got)
	}

	decision := map[string]any{"decision": "APPROVED"}
	resp, body = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/approvals/leave/%s", srv.URL, id), decision,
		map[string]string{"X-Actor": "mgr-bob"})
	mustStatus(t, resp, http.StatusOK, body)

	resp, body = doJSON(t, http.MethodGet, balancesURL, nil, nil)
	mustStatus(t, resp, http.StatusOK, body)
	if got := body["paid_remaining"].(float64); got != 19 {
		t.Errorf("paid_remaining = %v, want 19", got)
	}

	// The approved leave now blocks clock-in on that date
	in := map[string]any{
		"employee_id": "emp-alice", "date": "2025-06-10", "timestamp": "2025-06-10T09:00:00Z",
	}
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/attendance/clock-in", in, nil)
	mustStatus(t, resp, http.StatusUnprocessableEntity, body)
}

func TestScenario_SettledDecisionIsFinal(t *testing.T) {
	// GIVEN: A rejected leave request
	// WHEN: A second manager tries to approve it
	// THEN: 409 and the balance never moves

	srv := newTestServer(t)
	seedCatalog(t, srv.URL)

	lv := map[string]any{
		"employee_id": "emp-alice", "date": "2025-06-10", "type": "PAID", "duration": "FULL_DAY",
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/leave", lv, nil)
	mustStatus(t, resp, http.StatusCreated, body)
	id := body["id"].(string)
	url := fmt.Sprintf("%s/api/approvals/leave/%s", srv.URL, id)

	resp, body = doJSON(t, http.MethodPost, url,
		map[string]any{"decision": "REJECTED"}, map[string]string{"X-Actor": "mgr-bob"})
	mustStatus(t, resp, http.StatusOK, body)

	resp, body = doJSON(t, http.MethodPost, url,
		map[string]any{"decision": "APPROVED"}, map[string]string{"X-Actor": "mgr-carol"})
	mustStatus(t, resp, http.StatusConflict, body)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/employees/emp-alice/balances?year=2025", nil, nil)
	mustStatus(t, resp, http.StatusOK, body)
	if got := body["paid_remaining"].(float64); got != 20 {
		t.Errorf("paid_remaining = %v, want 20", got)
	}
}

// =============================================================================
// MANUAL SCHEDULING
// =============================================================================

func TestScenario_ManualEntryConflictsWithGenerated(t *testing.T) {
	// GIVEN: A generated Monday 09:00-17:00 row
	// WHEN: Adding an overlapping manual entry, then a disjoint one
	// THEN: 409 then 201

	srv := newTestServer(t)
	seedCatalog(t, srv.URL)

	gen := map[string]any{"role_id": "eng", "from": "2025-06-02", "to": "2025-06-02"}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/schedules/generate", gen, nil)
	mustStatus(t, resp, http.StatusOK, body)

	clash := map[string]any{
		"employee_id": "emp-alice", "date": "2025-06-02", "start": "16:00", "end": "20:00",
	}
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/schedules", clash, nil)
	mustStatus(t, resp, http.StatusConflict, body)

	evening := map[string]any{
		"employee_id": "emp-alice", "date": "2025-06-02", "start": "17:00", "end": "20:00",
	}
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/schedules", evening, nil)
	mustStatus(t, resp, http.StatusCreated, body)
	if body["is_custom"] != true {
		t.Errorf("manual row must be custom, got %v", body)
	}

	resp, body = doJSON(t, http.MethodGet,
		srv.URL+"/api/employees/emp-alice/schedules?from=2025-06-02&to=2025-06-02", nil, nil)
	mustStatus(t, resp, http.StatusOK, body)
}
