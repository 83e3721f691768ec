package errors

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  SmallOrder("minimum order is 24 pieces"),
			want: "minimum order is 24 pieces",
		},
		{
			name: "with operation",
			err: &Error{
				Code:    CodeConfig,
				Message: "tenant configuration invalid",
				Op:      "tenant.Load",
			},
			want: "tenant.Load: tenant configuration invalid",
		},
		{
			name: "with cause",
			err: &Error{
				Code:    CodeDatabase,
				Message: "database operation failed",
				Err:     errors.New("connection refused"),
			},
			want: "database operation failed: connection refused",
		},
		{
			name: "with operation and cause",
			err:  DatabaseError("quotes.Create", errors.New("connection refused")),
			want: "quotes.Create: database operation failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeSmallOrder, http.StatusBadRequest},
		{CodeQuantityRange, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeMissingField, http.StatusBadRequest},
		{CodeInvalidFormat, http.StatusBadRequest},
		{CodePricingGap, http.StatusUnprocessableEntity},
		{CodeTenantNotFound, http.StatusNotFound},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeExternalService, http.StatusServiceUnavailable},
		{CodeCircuitOpen, http.StatusServiceUnavailable},
		{CodeDatabase, http.StatusInternalServerError},
		{CodeConfig, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindClassification(t *testing.T) {
	user := []*Error{
		SmallOrder("too few"),
		QuantityRange("too many"),
		ValidationFailed("quantity must be positive"),
		MissingField("message"),
		TenantNotFound("ghost"),
	}
	for _, e := range user {
		if !e.IsUserError() {
			t.Errorf("%s: expected user error", e.Code)
		}
		if e.IsRetriable() {
			t.Errorf("%s: user error should not be retriable", e.Code)
		}
	}

	system := []*Error{
		PricingGap(500, 3),
		ConfigError("tenant.Load", errors.New("bad json")),
		DatabaseError("quotes.Create", errors.New("down")),
		InternalError("boom", nil),
	}
	for _, e := range system {
		if e.IsUserError() {
			t.Errorf("%s: system error misclassified as user error", e.Code)
		}
	}

	transient := []*Error{
		ExternalServiceError("postmark", errors.New("timeout")),
		New(CodeCircuitOpen, "circuit open"),
		New(CodeTimeout, "deadline exceeded"),
		New(CodeRateLimited, "slow down"),
	}
	for _, e := range transient {
		if !e.IsRetriable() {
			t.Errorf("%s: expected retriable", e.Code)
		}
	}
}

func TestPricingGapMessage(t *testing.T) {
	err := PricingGap(5000, 6)
	if err.Code != CodePricingGap {
		t.Fatalf("Code = %s, want %s", err.Code, CodePricingGap)
	}
	if !strings.Contains(err.Message, "5000") || !strings.Contains(err.Message, "6") {
		t.Errorf("message should name quantity and colors, got %q", err.Message)
	}
	if err.HTTPStatus() != http.StatusUnprocessableEntity {
		t.Errorf("HTTPStatus() = %d, want 422", err.HTTPStatus())
	}
}

func TestTenantNotFoundMessage(t *testing.T) {
	err := TenantNotFound("ghost")
	if !strings.Contains(err.Message, `"ghost"`) {
		t.Errorf("message should quote the tenant id, got %q", err.Message)
	}
	if err.HTTPStatus() != http.StatusNotFound {
		t.Errorf("HTTPStatus() = %d, want 404", err.HTTPStatus())
	}
}

func TestMissingFieldMessage(t *testing.T) {
	err := MissingField("customer_email")
	if err.Message != "missing required field: customer_email" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestUnwrapAndIs(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := Wrap(cause, "pricing.ComputeQuoteTotal", CodeInternal, "compute failed")

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	a := SmallOrder("minimum 24")
	b := SmallOrder("minimum 48")
	c := QuantityRange("too many")
	if !errors.Is(a, b) {
		t.Error("errors sharing a code should match")
	}
	if errors.Is(a, c) {
		t.Error("errors with different codes should not match")
	}
}

func TestWrapWithOp(t *testing.T) {
	t.Run("preserves app error code", func(t *testing.T) {
		inner := PricingGap(300, 4)
		out := WrapWithOp(inner, "handler.HandleConsoleQuote")
		if out.Code != CodePricingGap {
			t.Errorf("Code = %s, want %s", out.Code, CodePricingGap)
		}
		if out.Op != "handler.HandleConsoleQuote" {
			t.Errorf("Op = %q", out.Op)
		}
		if out.Kind != KindSystem {
			t.Error("Kind should carry over")
		}
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		out := WrapWithOp(errors.New("surprise"), "handler.HandleAsk")
		if out.Code != CodeInternal {
			t.Errorf("Code = %s, want %s", out.Code, CodeInternal)
		}
		if !strings.Contains(out.Error(), "surprise") {
			t.Errorf("cause lost: %q", out.Error())
		}
	})
}

func TestToResponseHidesInternals(t *testing.T) {
	err := DatabaseError("quotes.Create", errors.New("password=hunter2 auth failed"))
	resp := err.ToResponse()

	if resp.OK {
		t.Error("ok should be false")
	}
	if resp.Error.Code != CodeDatabase {
		t.Errorf("code = %s, want %s", resp.Error.Code, CodeDatabase)
	}
	if strings.Contains(resp.Error.Message, "hunter2") {
		t.Error("response leaked the underlying error")
	}
	if resp.Error.Message != "database operation failed" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

func TestHelpersOnForeignErrors(t *testing.T) {
	plain := errors.New("not an app error")

	if GetCode(plain) != CodeInternal {
		t.Errorf("GetCode = %s, want %s", GetCode(plain), CodeInternal)
	}
	if GetHTTPStatus(plain) != http.StatusInternalServerError {
		t.Errorf("GetHTTPStatus = %d, want 500", GetHTTPStatus(plain))
	}
	if IsUserError(plain) {
		t.Error("plain errors are not user errors")
	}
	if IsCode(plain, CodeSmallOrder) {
		t.Error("IsCode should not match a plain error")
	}
}

func TestHelpersOnAppErrors(t *testing.T) {
	err := SmallOrder("minimum order is 24 pieces")

	if GetCode(err) != CodeSmallOrder {
		t.Errorf("GetCode = %s", GetCode(err))
	}
	if GetHTTPStatus(err) != http.StatusBadRequest {
		t.Errorf("GetHTTPStatus = %d", GetHTTPStatus(err))
	}
	if !IsUserError(err) {
		t.Error("small order is a user error")
	}
	if !IsCode(err, CodeSmallOrder) {
		t.Error("IsCode should match")
	}

	chained := WrapWithOp(err, "handler.HandleConsoleQuote")
	if !IsCode(chained, CodeSmallOrder) {
		t.Error("IsCode should match through wrapping")
	}
}
