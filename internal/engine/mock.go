package engine

import "fmt"

// MockScript drives the mock recognizer: Utterances maps a zero-based Accept
// call index to the payload reported once that frame completes an utterance,
// Final is the payload returned by FinalResult.
type MockScript struct {
	Utterances map[int][]byte
	Final      []byte
}

type mockRecognizer struct {
	script  MockScript
	calls   int
	pending []byte
}

// NewMockRecognizer returns a recognizer that follows script. A nil script
// yields no utterances and an empty final payload.
func NewMockRecognizer(script *MockScript) Recognizer {
	s := MockScript{Final: []byte(`{"text": ""}`)}
	if script != nil {
		s = *script
	}
	return &mockRecognizer{script: s}
}

func (m *mockRecognizer) Accept(frame []byte) (bool, error) {
	payload, ok := m.script.Utterances[m.calls]
	m.calls++
	if ok {
		m.pending = payload
		return true, nil
	}
	return false, nil
}

func (m *mockRecognizer) Result() ([]byte, error) {
	if m.pending == nil {
		return nil, fmt.Errorf("no completed utterance")
	}
	payload := m.pending
	m.pending = nil
	return payload, nil
}

func (m *mockRecognizer) FinalResult() ([]byte, error) {
	if m.script.Final == nil {
		return []byte(`{"text": ""}`), nil
	}
	return m.script.Final, nil
}

func (m *mockRecognizer) Close() error {
	return nil
}
