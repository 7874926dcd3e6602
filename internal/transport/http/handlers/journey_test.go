package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"ptohub/internal/app/server"
	"ptohub/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Addr:              ":0",
		Environment:       "test",
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
		WorkbookPath:      filepath.Join(t.TempDir(), "ptohub.xlsx"),
		StoreTimeout:      10 * time.Second,
		SeedAdminName:     "Seed Admin",
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
		EmailFrom:         "no-reply@test.local",
		ApproverPolicy:    "live",
	}
}

func startApp(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()
	cfg := testConfig(t)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return ts, cfg
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, wantStatus int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, wantStatus, resp.StatusCode, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope from %s: %v", raw, err)
	}
	return env
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("expected token")
	}
	return payload.Token
}

func createUser(t *testing.T, client *http.Client, baseURL, adminToken string, body map[string]any) string {
	t.Helper()
	env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/users", adminToken, body, http.StatusCreated)
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode user response: %v", err)
	}
	if payload.ID == "" {
		t.Fatal("expected user id")
	}
	return payload.ID
}

func TestPtoRequestJourney(t *testing.T) {
	ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	managerID := createUser(t, client, ts.URL, adminToken, map[string]any{
		"name":           "Morgan Manager",
		"email":          "morgan@test.local",
		"role":           "MANAGER",
		"employmentType": "FullTime",
		"hireDate":       "2024-01-08",
		"password":       "Manager123!",
	})
	createUser(t, client, ts.URL, adminToken, map[string]any{
		"name":           "Riley Staff",
		"email":          "riley@test.local",
		"role":           "STAFF",
		"managerId":      managerID,
		"employmentType": "FullTime",
		"hireDate":       "2024-01-08",
		"password":       "Staff123!",
	})

	staffToken := login(t, client, ts.URL, "riley@test.local", "Staff123!")
	managerToken := login(t, client, ts.URL, "morgan@test.local", "Manager123!")

	// Draft a Mon-Fri vacation week, then submit it.
	env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/pto/requests", staffToken, map[string]any{
		"type":      "Vacation",
		"startDate": "2026-06-01",
		"endDate":   "2026-06-05",
		"reason":    "family trip",
	}, http.StatusCreated)
	var request struct {
		ID        string  `json:"id"`
		Status    string  `json:"status"`
		TotalDays float64 `json:"totalDays"`
	}
	if err := json.Unmarshal(env.Data, &request); err != nil {
		t.Fatalf("failed to decode request: %v", err)
	}
	if request.Status != "Draft" || request.TotalDays != 5 {
		t.Fatalf("unexpected draft: %+v", request)
	}

	env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/pto/requests/"+request.ID+"/submit", staffToken, nil, http.StatusOK)
	if err := json.Unmarshal(env.Data, &request); err != nil {
		t.Fatalf("failed to decode submitted request: %v", err)
	}
	if request.Status != "Submitted" {
		t.Fatalf("expected Submitted, got %s", request.Status)
	}

	// Deny without a comment is rejected; the approval succeeds.
	env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/pto/requests/"+request.ID+"/deny", managerToken, map[string]any{}, http.StatusBadRequest)
	if env.Code != "MISSING_PARAMETER" {
		t.Fatalf("expected MISSING_PARAMETER, got %s", env.Code)
	}

	env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/pto/requests/"+request.ID+"/approve", managerToken, map[string]any{"comment": "enjoy"}, http.StatusOK)
	if err := json.Unmarshal(env.Data, &request); err != nil {
		t.Fatalf("failed to decode approved request: %v", err)
	}
	if request.Status != "Approved" {
		t.Fatalf("expected Approved, got %s", request.Status)
	}

	// The approved week shows up as used balance.
	env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/pto/balance?year=2026", staffToken, nil, http.StatusOK)
	var bal struct {
		TotalDays     float64 `json:"totalDays"`
		UsedDays      float64 `json:"usedDays"`
		PendingDays   float64 `json:"pendingDays"`
		AvailableDays float64 `json:"availableDays"`
	}
	if err := json.Unmarshal(env.Data, &bal); err != nil {
		t.Fatalf("failed to decode balance: %v", err)
	}
	if bal.TotalDays != 15 || bal.UsedDays != 5 || bal.AvailableDays != 10 {
		t.Fatalf("unexpected balance: %+v", bal)
	}

	// A holiday in the middle of a week lowers the cost of a new request.
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/holidays", adminToken, map[string]any{
		"name": "Company Day",
		"date": "2026-06-10",
	}, http.StatusCreated)
	env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/pto/requests", staffToken, map[string]any{
		"type":      "Vacation",
		"startDate": "2026-06-08",
		"endDate":   "2026-06-12",
	}, http.StatusCreated)
	var holidayWeek struct {
		TotalDays float64 `json:"totalDays"`
	}
	if err := json.Unmarshal(env.Data, &holidayWeek); err != nil {
		t.Fatalf("failed to decode request: %v", err)
	}
	if holidayWeek.TotalDays != 4 {
		t.Fatalf("expected 4 days around the holiday, got %v", holidayWeek.TotalDays)
	}

	// A blackout range rejects overlapping requests outright.
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/blackouts", adminToken, map[string]any{
		"name":    "Quarter close",
		"date":    "2026-07-01",
		"endDate": "2026-07-05",
	}, http.StatusCreated)
	env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/pto/requests", staffToken, map[string]any{
		"type":      "Vacation",
		"startDate": "2026-07-02",
		"endDate":   "2026-07-03",
	}, http.StatusConflict)
	if env.Code != "BLACKOUT_CONFLICT" {
		t.Fatalf("expected BLACKOUT_CONFLICT, got %s", env.Code)
	}

	// The shared team calendar lists the approved absence.
	env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/pto/calendar", managerToken, nil, http.StatusOK)
	var calendarRows []struct {
		UserName string `json:"userName"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &calendarRows); err != nil {
		t.Fatalf("failed to decode calendar: %v", err)
	}
	found := false
	for _, row := range calendarRows {
		if row.UserName == "Riley Staff" && row.Status == "Approved" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected approved absence on the calendar, got %+v", calendarRows)
	}
}

func TestDecisionGuardsOverHTTP(t *testing.T) {
	ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	managerID := createUser(t, client, ts.URL, adminToken, map[string]any{
		"name":           "Morgan Manager",
		"email":          "morgan@test.local",
		"role":           "MANAGER",
		"employmentType": "FullTime",
		"hireDate":       "2024-01-08",
		"password":       "Manager123!",
	})
	createUser(t, client, ts.URL, adminToken, map[string]any{
		"name":           "Riley Staff",
		"email":          "riley@test.local",
		"role":           "STAFF",
		"managerId":      managerID,
		"employmentType": "FullTime",
		"hireDate":       "2024-01-08",
		"password":       "Staff123!",
	})
	staffToken := login(t, client, ts.URL, "riley@test.local", "Staff123!")
	managerToken := login(t, client, ts.URL, "morgan@test.local", "Manager123!")

	env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/pto/requests", staffToken, map[string]any{
		"type":      "Vacation",
		"startDate": "2026-06-01",
		"endDate":   "2026-06-05",
	}, http.StatusCreated)
	var request struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &request); err != nil {
		t.Fatalf("failed to decode request: %v", err)
	}

	// A draft cannot be decided, not even by the assigned manager.
	env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/pto/requests/"+request.ID+"/approve", managerToken, nil, http.StatusForbidden)
	if env.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED, got %s", env.Code)
	}

	// The owner cannot approve their own submitted request.
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/pto/requests/"+request.ID+"/submit", staffToken, nil, http.StatusOK)
	env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/pto/requests/"+request.ID+"/approve", staffToken, nil, http.StatusForbidden)
	if env.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED, got %s", env.Code)
	}

	// Unauthenticated requests never reach the workflow.
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/pto/requests", "", nil, http.StatusUnauthorized)

	// Staff cannot manage the holiday catalog.
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/holidays", staffToken, map[string]any{
		"name": "Rogue Holiday",
		"date": "2026-06-10",
	}, http.StatusForbidden)
}
