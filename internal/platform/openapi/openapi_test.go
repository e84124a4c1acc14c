package openapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func testRecord() []Property {
	return []Property{
		{Name: "age", Type: "integer", Description: "Age in years"},
		{Name: "gender", Type: "integer", Enum: []int{1, 2}},
		{Name: "weight", Type: "number"},
	}
}

func TestGenerateSpec_Structure(t *testing.T) {
	g := NewGenerator("1.0.0", "http://localhost:3000", testRecord())
	spec := g.GenerateSpec()

	if spec["openapi"] != "3.0.3" {
		t.Errorf("expected openapi '3.0.3', got %v", spec["openapi"])
	}
	info, ok := spec["info"].(map[string]interface{})
	if !ok {
		t.Fatal("expected info to be a map")
	}
	if info["version"] != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %v", info["version"])
	}
	servers, ok := spec["servers"].([]map[string]string)
	if !ok || len(servers) != 1 || servers[0]["url"] != "http://localhost:3000" {
		t.Errorf("unexpected servers %v", spec["servers"])
	}

	paths := spec["paths"].(map[string]interface{})
	predict, ok := paths["/api/predict"].(map[string]interface{})
	if !ok {
		t.Fatal("expected /api/predict path")
	}
	post := predict["post"].(map[string]interface{})
	responses := post["responses"].(map[string]interface{})
	for _, code := range []string{"200", "413", "500"} {
		if _, ok := responses[code]; !ok {
			t.Errorf("expected %s response", code)
		}
	}
}

func TestGenerateSpec_PatientRecordSchema(t *testing.T) {
	g := NewGenerator("1.0.0", "http://localhost:3000", testRecord())
	schemas := g.GenerateSpec()["components"].(map[string]interface{})["schemas"].(map[string]interface{})

	record := schemas["PatientRecord"].(map[string]interface{})
	required := record["required"].([]string)
	if strings.Join(required, ",") != "age,gender,weight" {
		t.Errorf("unexpected required list %v", required)
	}

	props := record["properties"].(map[string]interface{})
	weight := props["weight"].(map[string]interface{})
	if weight["type"] != "number" {
		t.Errorf("expected weight to be number, got %v", weight["type"])
	}
	gender := props["gender"].(map[string]interface{})
	if enum, ok := gender["enum"].([]int); !ok || len(enum) != 2 {
		t.Errorf("expected gender enum, got %v", gender["enum"])
	}
	age := props["age"].(map[string]interface{})
	if _, ok := age["enum"]; ok {
		t.Error("expected no enum on age")
	}
	if age["description"] != "Age in years" {
		t.Errorf("unexpected age description %v", age["description"])
	}
}

func TestRegisterRoutes(t *testing.T) {
	e := echo.New()
	NewGenerator("1.0.0", "http://localhost:3000", testRecord()).RegisterRoutes(e.Group("/api"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to unmarshal spec: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Errorf("unexpected document %v", doc["openapi"])
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/openapi.json") {
		t.Error("expected docs page to load the spec")
	}
}
