package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("mock", "local")
	m.AddResponse("classify this", `{"task_type":"general"}`)

	resp, err := m.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Text: "classify this"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"task_type":"general"}`, resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Positive(t, resp.Usage.TotalTokens)
}

func TestMockModel_DefaultResponse(t *testing.T) {
	m := NewMockModel("mock", "local")
	resp, err := m.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Text: "hello"}},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "hello")
}

func TestMockModel_Failure(t *testing.T) {
	m := NewMockModel("mock", "local")
	m.FailWith(errors.New("backend down"))

	_, err := m.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Text: "hello"}},
	})
	assert.Error(t, err)
}

func TestMockModel_NoMessages(t *testing.T) {
	m := NewMockModel("mock", "local")
	_, err := m.Complete(context.Background(), Request{})
	assert.Error(t, err)
}

func TestMockModel_Info(t *testing.T) {
	m := NewMockModel("mock", "local")
	info := m.Info()
	assert.Equal(t, "mock", info.Name)
	assert.Equal(t, "local", info.Provider)
}
