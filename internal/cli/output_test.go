package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/leadboard/internal/ordering"
	leadservice "github.com/thenoetrevino/leadboard/internal/services/lead"
	statusservice "github.com/thenoetrevino/leadboard/internal/services/status"
	"github.com/thenoetrevino/leadboard/internal/services/validate"
)

// ============================================================================
// Mock Types for Testing
// ============================================================================

type mockDataWithID struct {
	ID   string
	Name string
}

func (m mockDataWithID) GetID() string {
	return m.ID
}

type mockDataWithoutID struct {
	Name  string
	Value int
}

// capture redirects the given stream while fn runs
func capture(t *testing.T, stream **os.File, fn func()) string {
	t.Helper()
	old := *stream
	r, w, err := os.Pipe()
	require.NoError(t, err)
	*stream = w

	fn()

	_ = w.Close()
	*stream = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func decodeJSON(t *testing.T, output string) map[string]any {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &result), output)
	return result
}

// ============================================================================
// Success Method Tests
// ============================================================================

func TestOutputFormatter_Success_JSON(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}

	output := capture(t, &os.Stdout, func() {
		require.NoError(t, formatter.Success(map[string]any{"id": "acme"}))
	})

	result := decodeJSON(t, output)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "acme", result["data"].(map[string]any)["id"])
}

func TestOutputFormatter_Success_JSON_Result(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}
	res := Result{
		Data:    []string{"new", "won"},
		IDs:     []string{"new", "won"},
		Message: "Statuses in board 'acme'",
	}

	output := capture(t, &os.Stdout, func() {
		require.NoError(t, formatter.Success(res))
	})

	result := decodeJSON(t, output)
	assert.Equal(t, []any{"new", "won"}, result["data"], "only the payload is encoded")
}

func TestOutputFormatter_Success_Quiet(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"single GetID", mockDataWithID{ID: "ana-1a2b3c4d"}, "ana-1a2b3c4d\n"},
		{"result ids", Result{IDs: []string{"a", "b", "c"}}, "a\nb\nc\n"},
		{"result without ids", Result{Message: "done"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &OutputFormatter{Quiet: true}
			output := capture(t, &os.Stdout, func() {
				require.NoError(t, formatter.Success(tt.data))
			})
			assert.Equal(t, tt.want, output)
		})
	}
}

func TestOutputFormatter_Success_HumanReadable(t *testing.T) {
	formatter := &OutputFormatter{}

	output := capture(t, &os.Stdout, func() {
		require.NoError(t, formatter.Success(Result{Message: "✓ Lead moved"}))
	})
	assert.Equal(t, "✓ Lead moved\n", output)

	output = capture(t, &os.Stdout, func() {
		require.NoError(t, formatter.Success(mockDataWithoutID{Name: "x", Value: 1}))
	})
	assert.Contains(t, output, "Name:x")
}

func TestOutputFormatter_QuietModeGetIDPrecedence(t *testing.T) {
	t.Run("Quiet takes precedence over JSON when ids exist", func(t *testing.T) {
		formatter := &OutputFormatter{JSON: true, Quiet: true}
		output := capture(t, &os.Stdout, func() {
			require.NoError(t, formatter.Success(mockDataWithID{ID: "acme"}))
		})
		assert.Equal(t, "acme", strings.TrimSpace(output))
	})

	t.Run("Quiet without ids falls through to JSON", func(t *testing.T) {
		formatter := &OutputFormatter{JSON: true, Quiet: true}
		output := capture(t, &os.Stdout, func() {
			require.NoError(t, formatter.Success(mockDataWithoutID{Name: "Test", Value: 42}))
		})
		decodeJSON(t, output)
	})
}

func TestOutputFormatter_NilData(t *testing.T) {
	for _, tt := range []struct {
		name  string
		json  bool
		quiet bool
	}{
		{"JSON mode", true, false},
		{"Quiet mode", false, true},
		{"Human mode", false, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &OutputFormatter{JSON: tt.json, Quiet: tt.quiet}
			output := capture(t, &os.Stdout, func() {
				assert.NoError(t, formatter.Success(nil))
			})
			if tt.json {
				decodeJSON(t, output)
			}
		})
	}
}

// ============================================================================
// Error Method Tests
// ============================================================================

func TestOutputFormatter_Error_JSON(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}

	output := capture(t, &os.Stdout, func() {
		require.NoError(t, formatter.ErrorWithSuggestion("STATUS_NOT_FOUND", "status lost not found", "run leadboard status list"))
	})

	result := decodeJSON(t, output)
	assert.Equal(t, false, result["success"])
	errData := result["error"].(map[string]any)
	assert.Equal(t, "STATUS_NOT_FOUND", errData["code"])
	assert.Equal(t, "status lost not found", errData["message"])
	assert.Equal(t, "run leadboard status list", errData["suggestion"])
}

func TestOutputFormatter_ErrorCallsErrorWithSuggestion(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}

	output := capture(t, &os.Stdout, func() {
		require.NoError(t, formatter.Error("CODE", "message"))
	})

	errData := decodeJSON(t, output)["error"].(map[string]any)
	_, hasSuggestion := errData["suggestion"]
	assert.False(t, hasSuggestion, "empty suggestion must be omitted")
}

func TestOutputFormatter_Error_HumanReadable(t *testing.T) {
	formatter := &OutputFormatter{Quiet: true}

	stdout := capture(t, &os.Stdout, func() {
		stderr := capture(t, &os.Stderr, func() {
			require.NoError(t, formatter.ErrorWithSuggestion("CODE", "boom", "try again"))
		})
		assert.Equal(t, "Error: boom\nSuggestion: try again\n", stderr)
	})
	assert.Empty(t, stdout)
}

// ============================================================================
// Classify Tests
// ============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"board", fmt.Errorf("get: %w", statusservice.ErrBoardNotFound), "BOARD_NOT_FOUND", ExitNotFound},
		{"status", leadservice.ErrStatusNotFound, "STATUS_NOT_FOUND", ExitNotFound},
		{"lead", leadservice.ErrLeadNotFound, "LEAD_NOT_FOUND", ExitNotFound},
		{"duplicate status", statusservice.ErrStatusExists, "ALREADY_EXISTS", ExitValidation},
		{"position", fmt.Errorf("%w: index 9", ordering.ErrInvalidPosition), "INVALID_POSITION", ExitValidation},
		{"validation", validate.ErrInvalid, "VALIDATION_ERROR", ExitValidation},
		{"aborted", ordering.ErrTransactionAborted, "CONCURRENT_UPDATE", ExitError},
		{"usage", UsageError("--status is required"), "USAGE_ERROR", ExitUsage},
		{"unknown", errors.New("disk full"), "ERROR", ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := Classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExit, exit)
			assert.Equal(t, tt.wantExit, ExitCode(tt.err))
		})
	}

	assert.Equal(t, ExitSuccess, ExitCode(nil))
}
