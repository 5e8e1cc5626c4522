// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/helix-tui/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/").WithTimeout(2 * time.Second)
}

// =============================================================================
// CLASSIFY
// =============================================================================

func TestClassify_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/classify", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err, "request id must be a UUID")

		var req ClassifyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "add a step to water the plants", req.Message)

		json.NewEncoder(w).Encode(ClassifyResponse{Intent: "add_step"})
	})

	intent, err := c.Classify(context.Background(), "add a step to water the plants")
	require.NoError(t, err)
	assert.Equal(t, model.IntentAddStep, intent)
}

func TestClassifyIntent_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>")
		}},
		{"missing intent", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{}`)
		}},
		{"unknown intent", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"intent":"summarize"}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			assert.Equal(t, model.IntentNewSequence, c.ClassifyIntent(context.Background(), "hi"))
		})
	}
}

func TestClassifyIntent_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url)
	_, err := c.Classify(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, model.IntentNewSequence, c.ClassifyIntent(context.Background(), "hi"))
}

// =============================================================================
// CHAT
// =============================================================================

func TestSendMessage_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req.UserID)
		assert.Equal(t, "plan my morning", req.Message)

		io.WriteString(w, `{
			"reply": "Here is a plan.",
			"intent": "new_sequence",
			"sequence": [{"stepNumber":1,"stepTitle":"Wake","stepContent":"at 7"}],
			"sequenceId": "s1"
		}`)
	})

	reply, err := c.SendMessage(context.Background(), "u1", "plan my morning")
	require.NoError(t, err)
	assert.Equal(t, "Here is a plan.", reply.Reply)

	seq := reply.ActiveSequence()
	assert.Equal(t, "s1", seq.ID)
	require.Len(t, seq.Steps, 1)
	assert.Equal(t, model.Step{Number: 1, Title: "Wake", Content: "at 7"}, seq.Steps[0])
}

func TestSendMessage_EmptySequenceClearsIDToo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"reply":"Could you clarify?","sequence":[],"sequenceId":"s1"}`)
	})

	reply, err := c.SendMessage(context.Background(), "u1", "hmm")
	require.NoError(t, err)
	assert.Equal(t, model.Sequence{}, reply.ActiveSequence())
}

func TestSendMessage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, `{"error":"model offline"}`)
		}, http.StatusBadGateway},
		{"unparseable", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "not json")
		}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.SendMessage(context.Background(), "u1", "hello")
			require.Error(t, err)

			var te *TransportError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, OpChat, te.Op)
			assert.Equal(t, tt.wantStatus, te.Status)
		})
	}
}

func TestSendMessage_ErrorDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"message is required"}`)
	})
	_, err := c.SendMessage(context.Background(), "u1", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "message is required")
}

// =============================================================================
// LOAD / UPDATE / DELETE
// =============================================================================

func TestLoadHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/load", r.URL.Path)
		assert.Equal(t, "user@example.com&x=1", r.URL.Query().Get("user_id"))
		io.WriteString(w, `{
			"chat_history": [
				{"message":"hi","sender":"user"},
				{"message":"hello","sender":"ai"}
			],
			"sequences": [
				{"sequence_id":"s1","steps":[{"stepNumber":1,"stepTitle":"A","stepContent":"B"}]},
				{"sequence_id":"s0","steps":[]}
			]
		}`)
	})

	h, err := c.LoadHistory(context.Background(), "user@example.com&x=1")
	require.NoError(t, err)

	msgs := h.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.NewUserMessage("hi"), msgs[0])
	assert.Equal(t, model.NewAssistantMessage("hello"), msgs[1])

	seq, ok := h.Active()
	require.True(t, ok)
	assert.Equal(t, "s1", seq.ID)
	assert.Equal(t, []model.Step{{Number: 1, Title: "A", Content: "B"}}, seq.Steps)
}

func TestLoadHistory_NoSequences(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"chat_history":[],"sequences":[]}`)
	})
	h, err := c.LoadHistory(context.Background(), "u1")
	require.NoError(t, err)
	_, ok := h.Active()
	assert.False(t, ok)
	assert.Empty(t, h.Messages())
}

func TestUpdateStep(t *testing.T) {
	var got StepUpdate
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/sequence/update", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.UpdateStep(context.Background(), StepUpdate{
		SequenceID: "s1", StepNumber: 2, Field: model.FieldContent, Value: "café",
	})
	require.NoError(t, err)
	assert.Equal(t, StepUpdate{SequenceID: "s1", StepNumber: 2, Field: model.FieldContent, Value: "café"}, got)
}

func TestUpdateStep_IgnoresNonJSONSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
	assert.NoError(t, c.UpdateStep(context.Background(), StepUpdate{SequenceID: "s1", StepNumber: 1, Field: model.FieldTitle}))
}

func TestDeleteHistory(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/delete_history", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
	})
	require.NoError(t, c.DeleteHistory(context.Background(), "u1"))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDeleteHistory_ServerErrorNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := c.DeleteHistory(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

// =============================================================================
// TRANSPORT
// =============================================================================

func TestResponseSizeLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"reply":"`)
		io.WriteString(w, strings.Repeat("x", MaxResponseSize))
		io.WriteString(w, `"}`)
	})
	_, err := c.SendMessage(context.Background(), "u1", "big")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestRateLimit_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"intent":"add_step"}`)
	}).WithRateLimit(0.001, 1)

	_, err := c.Classify(context.Background(), "first")
	require.NoError(t, err, "burst allows the first request")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Classify(ctx, "second")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestTransportError_Message(t *testing.T) {
	err := &TransportError{Op: OpLoad, Status: 500, Err: ErrStatus}
	assert.Equal(t, "backend load (HTTP 500): unexpected status", err.Error())

	err = &TransportError{Op: OpLoad, Err: errors.New("dial tcp: refused")}
	assert.Equal(t, "backend load: dial tcp: refused", err.Error())
}
