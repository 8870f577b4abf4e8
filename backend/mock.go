package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZaguanLabs/formlingo"
)

// MockBackend is a mock translation service for testing and demos.
type MockBackend struct {
	mu          sync.Mutex
	Result      *formlingo.TranslationResult // Returned on success; a sample form when nil
	Err         error                        // Returned instead of Result when set
	CallCount   int                          // Number of times Translate was called
	LastRequest *TranslateRequest            // Last request received
}

// NewMockBackend creates a mock backend that answers with SampleResult.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Translate returns the configured outcome.
func (m *MockBackend) Translate(ctx context.Context, req TranslateRequest) (*formlingo.TranslationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRequest = &req

	if err := ctx.Err(); err != nil {
		return nil, &formlingo.TransportError{Message: "request canceled", Cause: err}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return SampleResult(req.TargetLanguage), nil
}

// Calls returns the number of Translate calls so far.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset resets the call count and last request.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// SampleResult returns a small form exercising every field type and a table section.
func SampleResult(targetLanguage string) *formlingo.TranslationResult {
	return &formlingo.TranslationResult{
		FormTitle: fmt.Sprintf("Sample Application Form [%s]", targetLanguage),
		Sections: []formlingo.FormSection{
			{
				SectionTitle: "Applicant Details",
				Description:  "Write in block letters.",
				Rows: []formlingo.FormRow{
					{Fields: []formlingo.FormField{
						{Label: "Full Name:", OriginalNumber: "01.", Type: formlingo.FieldText},
						{Label: "Photograph", Type: formlingo.FieldPhoto},
					}},
					{Fields: []formlingo.FormField{
						{Label: "Date of Birth", OriginalNumber: "02.", Type: formlingo.FieldText},
						{Label: "Male", Type: formlingo.FieldCheckbox},
						{Label: "Female", Type: formlingo.FieldCheckbox},
					}},
				},
			},
			{
				SectionTitle: "Family Members",
				IsTable:      true,
				Rows: []formlingo.FormRow{
					{Fields: []formlingo.FormField{
						{Label: "Name", Type: formlingo.FieldLabel},
						{Label: "Relation", Type: formlingo.FieldLabel},
					}},
					{Fields: []formlingo.FormField{
						{Label: "", Type: formlingo.FieldText},
						{Label: "", Type: formlingo.FieldText},
					}},
				},
			},
		},
		Simplification: "This form registers you for a service.\nWrite your full name as on your ID.\nAttach a recent photograph.",
	}
}

// Verify MockBackend implements Backend
var _ Backend = (*MockBackend)(nil)
