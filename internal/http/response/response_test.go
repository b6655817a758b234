package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorUsesMatchingHTTPStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	NotFound(c, "order not found")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body struct {
		StatusCode int               `json:"status_code"`
		Msg        string            `json:"msg"`
		Data       map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.StatusCode != CodeNotFound || body.Msg != "order not found" || body.Data["request_id"] != "req-1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestErrorWithBusinessCodeFallsBackTo200(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, 10001, "custom")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for non-http code, got %d", w.Code)
	}
}

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Created(c, gin.H{"id": 1})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.StatusCode != CodeOK || body.Msg != "success" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestClassifyEchoesMatchedAndHidesInternal(t *testing.T) {
	errMissing := errors.New("not found")
	errBad := errors.New("invalid argument")
	rules := []ErrorRule{
		{Target: errMissing, Code: CodeNotFound},
		{Target: errBad, Code: CodeBadRequest},
	}

	got := Classify(fmt.Errorf("%w: nursery", errMissing), rules, "internal error")
	if got.Code != CodeNotFound || got.Message != "not found: nursery" || got.Err != nil {
		t.Fatalf("unexpected not found classification: %+v", got)
	}
	got = Classify(fmt.Errorf("%w: quantity", errBad), rules, "internal error")
	if got.Code != CodeBadRequest || got.Message != "invalid argument: quantity" {
		t.Fatalf("unexpected bad request classification: %+v", got)
	}

	cause := errors.New("connection reset")
	got = Classify(cause, rules, "internal error")
	if got.Code != CodeInternal || got.Message != "internal error" {
		t.Fatalf("unexpected internal classification: %+v", got)
	}
	if !errors.Is(got, cause) {
		t.Fatalf("internal classification should keep cause")
	}
}
