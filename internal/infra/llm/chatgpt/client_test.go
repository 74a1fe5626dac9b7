package chatgpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_CreateChatCompletionSendsSchema(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"{\"foods\":[]}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`)
	}))
	defer srv.Close()

	client, err := NewClient("key", srv.URL+"/")
	require.NoError(t, err)

	resp, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: "user", Content: "apple"}},
		ResponseFormat: &ResponseFormat{
			Type:       "json_schema",
			JSONSchema: &JSONSchema{Name: "foods", Strict: true, Schema: map[string]any{"type": "object"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, `{"foods":[]}`, resp.Choices[0].Message.Content)
	require.Equal(t, 15, resp.Usage.TotalTokens)

	require.False(t, got.Stream)
	require.Equal(t, "json_schema", got.ResponseFormat.Type)
	require.Equal(t, "foods", got.ResponseFormat.JSONSchema.Name)
}

func TestClient_StreamReadsUntilDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.True(t, req.Stream)
		require.True(t, req.StreamOptions.IncludeUsage)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Hi", " there"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[],\"usage\":{\"prompt_tokens\":5,\"completion_tokens\":2,\"total_tokens\":7}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client, err := NewClient("key", srv.URL)
	require.NoError(t, err)
	stream, err := client.CreateChatCompletionStream(context.Background(), ChatCompletionRequest{Model: "m"})
	require.NoError(t, err)
	defer stream.Close()

	var text string
	var usage *Usage
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		for _, choice := range chunk.Choices {
			text += choice.Delta.Content
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
	}
	require.Equal(t, "Hi there", text)
	require.Equal(t, 7, usage.TotalTokens)
	require.NoError(t, stream.Close())
}

func TestClient_StreamCutShortIsUnexpectedEOF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Try a short wal\"}}]}\n\n")
	}))
	defer srv.Close()

	client, err := NewClient("key", srv.URL)
	require.NoError(t, err)
	stream, err := client.CreateChatCompletionStream(context.Background(), ChatCompletionRequest{Model: "m"})
	require.NoError(t, err)
	defer stream.Close()

	chunk, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "Try a short wal", chunk.Choices[0].Delta.Content)

	_, err = stream.Recv()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.False(t, errors.Is(err, io.EOF))
}

func TestClient_StreamFinishReasonWithoutDoneEndsCleanly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Done.\"},\"finish_reason\":\"stop\"}]}\n\n")
	}))
	defer srv.Close()

	client, err := NewClient("key", srv.URL)
	require.NoError(t, err)
	stream, err := client.CreateChatCompletionStream(context.Background(), ChatCompletionRequest{Model: "m"})
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Recv()
	require.NoError(t, err)
	_, err = stream.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestClient_StatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient("key", srv.URL)
	require.NoError(t, err)

	_, err = client.CreateChatCompletionStream(context.Background(), ChatCompletionRequest{Model: "m"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Contains(t, apiErr.Body, "rate limited")

	_, err = client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	require.True(t, errors.As(err, &apiErr))
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(" ", "")
	require.Error(t, err)
}
