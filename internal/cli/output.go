package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool
}

// Result is what a command hands to the formatter: a JSON payload, the ids
// printed in quiet mode and the human-readable text.
type Result struct {
	Data    any
	IDs     []string
	Message string
}

// GetIDs returns the ids printed in quiet mode
func (r Result) GetIDs() []string { return r.IDs }

// Human returns the human-readable rendering
func (r Result) Human() string { return r.Message }

// MarshalJSON encodes only the payload
func (r Result) MarshalJSON() ([]byte, error) { return json.Marshal(r.Data) }

// Success outputs successful operation result
func (f *OutputFormatter) Success(data any) error {
	if f.Quiet {
		switch v := data.(type) {
		case interface{ GetIDs() []string }:
			for _, id := range v.GetIDs() {
				fmt.Println(id)
			}
			return nil
		case interface{ GetID() string }:
			fmt.Println(v.GetID())
			return nil
		}
	}

	if f.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	// Human-readable format
	return f.prettyPrint(data)
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	// Human-readable error
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	if suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
	}
	return nil
}

// prettyPrint formats data for human-readable output
func (f *OutputFormatter) prettyPrint(data any) error {
	if h, ok := data.(interface{ Human() string }); ok {
		if msg := h.Human(); msg != "" {
			fmt.Println(msg)
		}
		return nil
	}
	fmt.Printf("%+v\n", data)
	return nil
}
