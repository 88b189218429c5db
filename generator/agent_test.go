package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	reply   string
	err     error
	calls   int
	lastMsg Prompt
}

func (s *stubLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	s.calls++
	s.lastMsg = prompt
	return s.reply, s.err
}

func TestNewAgentRequiresLLM(t *testing.T) {
	_, err := NewAgent(nil, nil)
	require.Error(t, err)
}

func TestAgentGenerate(t *testing.T) {
	llm := &stubLLM{reply: `{"name":"Upma","prepTime":15,"ingredients":["rava"],"instructions":"1. Roast rava","mood":"Happy "}`}
	agent, err := NewAgent(llm, nil)
	require.NoError(t, err)

	d, err := agent.Generate(context.Background(), Request{Mood: "happy", Age: 30, City: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, "Upma", d.Name)
	assert.Equal(t, "15 minutes", d.PrepTime)
	assert.Equal(t, "happy", d.Mood)
	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.lastMsg.User, "Pune")
}

func TestAgentGenerateFormatErrorNoRetry(t *testing.T) {
	llm := &stubLLM{reply: "I am not JSON"}
	agent, err := NewAgent(llm, nil)
	require.NoError(t, err)

	_, err = agent.Generate(context.Background(), Request{Mood: "sad", Age: 20, City: "Delhi"})
	var ferr *FormatError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, 1, llm.calls)
}

func TestAgentGenerateLLMError(t *testing.T) {
	boom := errors.New("quota exceeded")
	agent, err := NewAgent(&stubLLM{err: boom}, nil)
	require.NoError(t, err)

	_, err = agent.Generate(context.Background(), Request{Mood: "sad", Age: 20, City: "Delhi"})
	assert.ErrorIs(t, err, boom)
}

func TestAgentValidate(t *testing.T) {
	llm := &stubLLM{}
	agent, err := NewAgent(llm, nil)
	require.NoError(t, err)

	for name, req := range map[string]Request{
		"no mood": {Age: 20, City: "Delhi"},
		"no city": {Mood: "sad", Age: 20},
		"no age":  {Mood: "sad", City: "Delhi"},
		"too old": {Mood: "sad", Age: 200, City: "Delhi"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, agent.Validate(req))
		})
	}
	assert.NoError(t, agent.Validate(Request{Mood: "sad", Age: 20, City: "Delhi"}))
	assert.Zero(t, llm.calls)
}

func TestAgentGenerateDoesNotValidate(t *testing.T) {
	llm := &stubLLM{reply: `{"name":"Upma","prepTime":15,"ingredients":["rava"],"instructions":"1. Roast rava","mood":"x"}`}
	agent, err := NewAgent(llm, nil)
	require.NoError(t, err)

	d, err := agent.Generate(context.Background(), Request{Mood: "sad"})
	require.NoError(t, err)
	assert.Equal(t, "sad", d.Mood)
	assert.Equal(t, 1, llm.calls)
}

func TestMockLLMRoundTrip(t *testing.T) {
	agent, err := NewAgent(MockLLM{}, nil)
	require.NoError(t, err)

	d, err := agent.Generate(context.Background(), Request{Mood: "energetic", Age: 25, City: "Chennai"})
	require.NoError(t, err)
	assert.Equal(t, "25 minutes", d.PrepTime)
	assert.Equal(t, "energetic", d.Mood)
	assert.Len(t, d.Ingredients, 4)
}
