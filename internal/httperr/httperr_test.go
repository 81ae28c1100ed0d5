package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap/zaptest"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("create booking: %w", Conflict("slot_unavailable", ""))

	if !IsKind(err, KindConflict) {
		t.Fatal("expected conflict kind through wrap")
	}
	if !IsBusiness(err, "slot_unavailable") {
		t.Fatal("expected code through wrap")
	}
	if IsKind(err, KindValidation) {
		t.Fatal("conflict must not read as validation")
	}
}

func TestPostgresErrorCodes(t *testing.T) {
	excl := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01"})
	if !IsExclusionConflict(excl) {
		t.Fatal("23P01 should be an exclusion conflict")
	}
	if IsExclusionConflict(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("a unique violation is not an exclusion conflict")
	}
	if IsExclusionConflict(errors.New("boom")) {
		t.Fatal("plain error is not an exclusion conflict")
	}
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{Validation("invalid_request", ""), http.StatusBadRequest, "invalid_request"},
		{NotFound("appointment_not_found", ""), http.StatusNotFound, "appointment_not_found"},
		{Forbidden("forbidden", ""), http.StatusForbidden, "forbidden"},
		{Conflict("slot_unavailable", ""), http.StatusConflict, "slot_unavailable"},
		{State("invalid_transition", ""), http.StatusUnprocessableEntity, "invalid_transition"},
		{Signature("payment_verification_failed", ""), http.StatusBadRequest, "payment_verification_failed"},
		{Gateway("gateway_unavailable", errors.New("secret=abc timeout")), http.StatusServiceUnavailable, "gateway_unavailable"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		Respond(c, log, tc.err)

		if w.Code != tc.wantStatus {
			t.Errorf("%v: status %d, want %d", tc.err, w.Code, tc.wantStatus)
		}

		var body HTTPError
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Code != tc.wantCode {
			t.Errorf("%v: code %q, want %q", tc.err, body.Code, tc.wantCode)
		}
		if body.Message == "" {
			t.Errorf("%v: empty message", tc.err)
		}
		if tc.wantStatus == http.StatusServiceUnavailable && body.Message != defaultMessages[KindGateway] {
			t.Errorf("gateway cause leaked: %q", body.Message)
		}
	}
}
