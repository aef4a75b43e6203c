// Package testutil provides helpers and testify mocks for the interfaces defined in
// the converter library (pkg/converter and subpackages).
package testutil

import (
	"time"

	"github.com/stackvity/utf-converter/pkg/converter"
	"github.com/stackvity/utf-converter/pkg/converter/encoding"
	"github.com/stretchr/testify/mock"
)

// MockGuesser provides a mock implementation of the encoding.Guesser interface.
// Configure expectations using testify/mock methods (e.g., .On("Guess", mock.Anything).Return(...)).
type MockGuesser struct {
	mock.Mock
}

// Guess mocks the Guess method.
func (m *MockGuesser) Guess(data []byte) (encoding.Guess, error) {
	args := m.Called(data)
	g, _ := args.Get(0).(encoding.Guess)
	return g, args.Error(1)
}

// MockHooks provides a mock implementation of the converter.Hooks interface.
type MockHooks struct {
	mock.Mock
}

// OnFileDiscovered mocks the OnFileDiscovered method.
func (m *MockHooks) OnFileDiscovered(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// OnFileStatusUpdate mocks the OnFileStatusUpdate method.
func (m *MockHooks) OnFileStatusUpdate(path string, status converter.Status, message string, duration time.Duration) error {
	args := m.Called(path, status, message, duration)
	return args.Error(0)
}

// OnRunComplete mocks the OnRunComplete method.
func (m *MockHooks) OnRunComplete(report converter.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

// StatusUpdate is one recorded OnFileStatusUpdate call.
type StatusUpdate struct {
	Path    string
	Status  converter.Status
	Message string
}

// RecordingHooks records every hook call for later assertions.
type RecordingHooks struct {
	Discovered []string
	Updates    []StatusUpdate
	Reports    []converter.Report
}

// OnFileDiscovered implements converter.Hooks.
func (h *RecordingHooks) OnFileDiscovered(path string) error {
	h.Discovered = append(h.Discovered, path)
	return nil
}

// OnFileStatusUpdate implements converter.Hooks.
func (h *RecordingHooks) OnFileStatusUpdate(path string, status converter.Status, message string, _ time.Duration) error {
	h.Updates = append(h.Updates, StatusUpdate{Path: path, Status: status, Message: message})
	return nil
}

// OnRunComplete implements converter.Hooks.
func (h *RecordingHooks) OnRunComplete(report converter.Report) error {
	h.Reports = append(h.Reports, report)
	return nil
}

// Final returns the last status recorded for path, or "" if none.
func (h *RecordingHooks) Final(path string) converter.Status {
	for i := len(h.Updates) - 1; i >= 0; i-- {
		if h.Updates[i].Path == path {
			return h.Updates[i].Status
		}
	}
	return ""
}
