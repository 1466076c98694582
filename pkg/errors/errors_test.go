// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code matching across chains

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/genx/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "feature_not_found",
			code:    errors.ErrFeatureNotFound,
			message: `don't know where to load feature "mailer"`,
			wantStr: `[FEATURE_NOT_FOUND] don't know where to load feature "mailer"`,
		},
		{
			name:    "duplicate_service",
			code:    errors.ErrDuplicateService,
			message: `service "db" already registered`,
			wantStr: `[DUPLICATE_SERVICE] service "db" already registered`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrUnknownStage, "invalid feature stage %q for %s", "Later", "cache")
	want := `invalid feature stage "Later" for cache`
	if err.Message != want {
		t.Errorf("Newf() message = %q, want %q", err.Message, want)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("dial tcp: connection refused")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrFeatureLoad, "feature \"db\" failed to load")

		if err.Code != errors.ErrFeatureLoad {
			t.Errorf("Wrap() code = %v, want %v", err.Code, errors.ErrFeatureLoad)
		}

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[FEATURE_LOAD] feature \"db\" failed to load: dial tcp: connection refused"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		err := errors.Wrap(nil, errors.ErrInternal, "internal error")
		if err != nil {
			t.Error("Wrap(nil) should return nil")
		}
	})

	t.Run("wrapf_formats_message", func(t *testing.T) {
		err := errors.Wrapf(baseErr, errors.ErrConfigLoad, "cannot read %s", "conf/app.default.yaml")
		if err.Message != "cannot read conf/app.default.yaml" {
			t.Errorf("Wrapf() message = %q", err.Message)
		}
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrFeatureNotFound, "not found").
		WithDetail("feature", "mailer").
		WithDetail("roots", 2)

	if err.Details["feature"] != "mailer" {
		t.Errorf("WithDetail() feature = %v, want %v", err.Details["feature"], "mailer")
	}

	if err.Details["roots"] != 2 {
		t.Errorf("WithDetail() roots = %v, want %v", err.Details["roots"], 2)
	}
}

func TestWithDetails(t *testing.T) {
	details := map[string]interface{}{
		"feature": "cache",
		"stage":   "Services",
	}

	err := errors.New(errors.ErrFeatureLoad, "load failed").WithDetails(details)

	for k, v := range details {
		if err.Details[k] != v {
			t.Errorf("WithDetails() %s = %v, want %v", k, err.Details[k], v)
		}
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrDuplicateService, "error 1")
	err2 := errors.New(errors.ErrDuplicateService, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	t.Run("same_code_is_equal", func(t *testing.T) {
		if !err1.Is(err2) {
			t.Error("Is() should return true for same code")
		}
	})

	t.Run("different_code_not_equal", func(t *testing.T) {
		if err1.Is(err3) {
			t.Error("Is() should return false for different codes")
		}
	})

	t.Run("works_with_errors_Is", func(t *testing.T) {
		if !stderrors.Is(err1, err2) {
			t.Error("errors.Is() should work with GenxError")
		}
	})
}

func TestIsErrorCode(t *testing.T) {
	dup := errors.New(errors.ErrDuplicateService, "service \"x\" already registered")

	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrFeatureNotFound, "not found"),
			code:     errors.ErrFeatureNotFound,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrFeatureNotFound, "not found"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "outer_code_of_wrapped_error",
			err:      errors.Wrap(dup, errors.ErrFeatureLoad, "load failed"),
			code:     errors.ErrFeatureLoad,
			expected: true,
		},
		{
			name:     "inner_code_of_wrapped_error",
			err:      errors.Wrap(dup, errors.ErrFeatureLoad, "load failed"),
			code:     errors.ErrDuplicateService,
			expected: true,
		},
		{
			name:     "code_behind_fmt_wrapping",
			err:      fmt.Errorf("bootstrap: %w", dup),
			code:     errors.ErrDuplicateService,
			expected: true,
		},
		{
			name:     "code_inside_joined_error",
			err:      stderrors.Join(stderrors.New("first"), dup),
			code:     errors.ErrDuplicateService,
			expected: true,
		},
		{
			name:     "non_genx_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected errors.ErrorCode
	}{
		{
			name:     "genx_error",
			err:      errors.New(errors.ErrConfigLoop, "too many passes"),
			expected: errors.ErrConfigLoop,
		},
		{
			name:     "outermost_code_wins",
			err:      errors.Wrap(errors.New(errors.ErrDuplicateService, "dup"), errors.ErrFeatureLoad, "load"),
			expected: errors.ErrFeatureLoad,
		},
		{
			name:     "standard_error",
			err:      stderrors.New("standard error"),
			expected: errors.ErrUnknown,
		},
		{
			name:     "nil_error",
			err:      nil,
			expected: errors.ErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorDetails(t *testing.T) {
	err := errors.New(errors.ErrFeatureLoad, "load").WithDetail("feature", "db")
	if got := errors.GetErrorDetails(err); got["feature"] != "db" {
		t.Errorf("GetErrorDetails() = %v", got)
	}
	if got := errors.GetErrorDetails(stderrors.New("plain")); got != nil {
		t.Errorf("GetErrorDetails() on plain error = %v, want nil", got)
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	parseErr := errors.Wrap(rootCause, errors.ErrConfigParse, "cannot parse app.default.yaml")
	loadErr := errors.Wrap(parseErr, errors.ErrConfigLoad, "failed to load config")

	t.Run("top_level_has_correct_code", func(t *testing.T) {
		if errors.GetErrorCode(loadErr) != errors.ErrConfigLoad {
			t.Error("Top level should have ErrConfigLoad code")
		}
	})

	t.Run("can_find_middle_error", func(t *testing.T) {
		var genxErr *errors.GenxError
		if stderrors.As(loadErr.Unwrap(), &genxErr) {
			if genxErr.Code != errors.ErrConfigParse {
				t.Error("Middle error should have ErrConfigParse code")
			}
		} else {
			t.Error("Middle error should be a GenxError")
		}
	})

	t.Run("can_find_root_cause", func(t *testing.T) {
		if !stderrors.Is(loadErr, rootCause) {
			t.Error("Should find root cause with errors.Is")
		}
	})
}
