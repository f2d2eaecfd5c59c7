package integration

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/reverse-mortgage/internal/cache"
	"github.com/iwvelando/reverse-mortgage/internal/config"
	"github.com/iwvelando/reverse-mortgage/internal/quote"
	"github.com/iwvelando/reverse-mortgage/internal/server"
	"github.com/iwvelando/reverse-mortgage/pkg/mortgage"
	"github.com/iwvelando/reverse-mortgage/pkg/output"
	"github.com/iwvelando/reverse-mortgage/pkg/testutil"
	"go.uber.org/zap"
)

const testConfigPath = "../test_config.yaml"

// baseline holds the expected monthly payment of each valid scenario.
var baseline = map[string]float64{
	"excellent married": 1041666.67,
	"good over seventy": 1000000.00,
	"average low rate":  416666.67,
	"upper band capped": 1500000.00,
}

func loadQuotes(t *testing.T) []quote.Quote {
	t.Helper()

	conf, err := config.LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	results, err := quote.GetQuotes(zap.NewNop(), *conf)
	if err != nil {
		t.Fatalf("GetQuotes() error = %v", err)
	}
	return results
}

// TestMainIntegrationBaseline checks every configured scenario against the
// expected payments and error kinds.
func TestMainIntegrationBaseline(t *testing.T) {
	results := loadQuotes(t)

	expectedScenarios := []string{
		"excellent married",
		"good over seventy",
		"average low rate",
		"upper band capped",
		"quoted property value",
		"missing marital status",
	}

	if len(results) != len(expectedScenarios) {
		t.Fatalf("Expected %d scenarios, got %d", len(expectedScenarios), len(results))
	}
	for i, expected := range expectedScenarios {
		if results[i].Name != expected {
			t.Errorf("Scenario %d: expected name %q, got %q", i, expected, results[i].Name)
		}
	}

	for name, want := range baseline {
		q := testutil.FindQuote(results, name)
		if q == nil {
			t.Errorf("Missing scenario %q", name)
			continue
		}
		if !q.OK() {
			t.Errorf("Scenario %q failed: %v", name, q.Err)
			continue
		}
		if q.Breakdown.MonthlyPayment != want {
			t.Errorf("Scenario %q: expected payment %.2f, got %.2f", name, want, q.Breakdown.MonthlyPayment)
		}
	}

	if q := testutil.FindQuote(results, "quoted property value"); q == nil || mortgage.KindName(q.Err) != "DataType" {
		t.Errorf("Expected DataType failure for quoted property value, got %+v", q)
	}
	if q := testutil.FindQuote(results, "missing marital status"); q == nil || mortgage.KindName(q.Err) != "InvalidMaritalStatus" {
		t.Errorf("Expected InvalidMaritalStatus failure for missing marital status, got %+v", q)
	}
	if testutil.FindQuote(results, "parked") != nil {
		t.Error("Inactive scenario should be skipped")
	}
	if failed := quote.Failed(results); failed != 2 {
		t.Errorf("Expected 2 failed scenarios, got %d", failed)
	}
}

func TestCSVOutputFormat(t *testing.T) {
	results := loadQuotes(t)

	var buf bytes.Buffer
	if err := output.CsvFormat(&buf, results); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV output does not parse: %v", err)
	}
	if len(records) != len(results)+1 {
		t.Fatalf("Expected %d records, got %d", len(results)+1, len(records))
	}

	for _, record := range records {
		if len(record) != 13 {
			t.Errorf("CSV line should have 13 fields, got %d: %v", len(record), record)
		}
	}
	if records[0][0] != "scenario" || records[0][9] != "monthly payment" {
		t.Errorf("Unexpected header: %v", records[0])
	}
	if records[2][9] != "1000000.00" {
		t.Errorf("Unexpected payment for good over seventy: %v", records[2])
	}
}

func TestPrettyOutputFormat(t *testing.T) {
	results := loadQuotes(t)

	var buf bytes.Buffer
	output.PrettyFormat(&buf, results)
	text := buf.String()

	for name := range baseline {
		if !strings.Contains(text, name) {
			t.Errorf("Pretty output missing scenario %q", name)
		}
	}
	for _, want := range []string{"1,041,666.67", "1,500,000.00", "Error (DataType)", "Error (InvalidMaritalStatus)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Pretty output missing %q", want)
		}
	}
}

// TestHTTPMatchesBatch sends every valid scenario through the HTTP API and
// checks the answer agrees with the batch quote, both computed and cached.
func TestHTTPMatchesBatch(t *testing.T) {
	results := loadQuotes(t)

	srv := server.New(zap.NewNop(), cache.NewMemory(0), server.Options{MaxRequestSize: 4096, Version: "integration"})
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, q := range results {
		if !q.OK() {
			continue
		}

		body, err := json.Marshal(q.Inputs)
		if err != nil {
			t.Fatalf("marshal inputs: %v", err)
		}

		for _, wantCached := range []bool{false, true} {
			resp, err := http.Post(ts.URL+"/api/payment", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("POST /api/payment: %v", err)
			}

			var decoded struct {
				MonthlyPayment float64 `json:"monthlyPayment"`
				Cached         bool    `json:"cached"`
			}
			err = json.NewDecoder(resp.Body).Decode(&decoded)
			_ = resp.Body.Close()
			if err != nil {
				t.Fatalf("decode response: %v", err)
			}

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Scenario %q: expected 200, got %d", q.Name, resp.StatusCode)
			}
			if decoded.MonthlyPayment != q.Breakdown.MonthlyPayment {
				t.Errorf("Scenario %q: HTTP payment %.2f differs from batch %.2f", q.Name, decoded.MonthlyPayment, q.Breakdown.MonthlyPayment)
			}
			if decoded.Cached != wantCached {
				t.Errorf("Scenario %q: expected cached=%v", q.Name, wantCached)
			}
		}
	}
}

// TestExportRoundTrip exports a scenario through the API and evaluates the
// returned YAML as a configuration file.
func TestExportRoundTrip(t *testing.T) {
	srv := server.New(zap.NewNop(), nil, server.Options{})
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := `{"name": "exported", "property_value": 400000000, "property_condition": "good",
		"marital_status": "married", "owner_age": 72, "spouse_age": 70, "interest_rate": 0.5}`
	resp, err := http.Post(ts.URL+"/api/export", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/export: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var decoded map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	conf, err := config.LoadConfigurationFromReader(strings.NewReader(decoded["scenarioYaml"]))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	results, err := quote.GetQuotes(zap.NewNop(), *conf)
	if err != nil {
		t.Fatalf("GetQuotes() error = %v", err)
	}
	q := testutil.FindQuote(results, "exported")
	if q == nil || !q.OK() {
		t.Fatalf("Exported scenario did not evaluate: %+v", q)
	}
	if q.Breakdown.MonthlyPayment != baseline["good over seventy"] {
		t.Errorf("Expected %.2f, got %.2f", baseline["good over seventy"], q.Breakdown.MonthlyPayment)
	}
}
