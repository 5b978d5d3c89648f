package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
)

// capturedRequest mirrors chatDetails with the format-specific part kept
// raw so tests can decode it per family.
type capturedRequest struct {
	CompartmentID string          `json:"compartmentId"`
	ServingMode   servingMode     `json:"servingMode"`
	ChatRequest   json.RawMessage `json:"chatRequest"`
}

func testConfig(serverURL string) Config {
	return Config{
		Endpoint:      serverURL,
		APIKey:        "test-key",
		CompartmentID: "ocid1.compartment.oc1..test",
	}
}

func cohereResponse(text string) string {
	resp := map[string]any{
		"modelId": "cohere.command-a-03-2025",
		"chatResponse": map[string]any{
			"apiFormat": "COHERE",
			"text":      text,
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func genericResponse(text string) string {
	resp := map[string]any{
		"modelId": "meta.llama-3.3-70b-instruct",
		"chatResponse": map[string]any{
			"apiFormat": "GENERIC",
			"choices": []map[string]any{
				{
					"message": map[string]any{
						"role": "ASSISTANT",
						"content": []map[string]any{
							{"type": "TEXT", "text": text},
						},
					},
					"finishReason": "stop",
				},
			},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestNewLLMService_MissingSettings(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing endpoint", Config{APIKey: "k", CompartmentID: "c"}},
		{"missing api key", Config{Endpoint: "https://example.com", CompartmentID: "c"}},
		{"missing compartment", Config{Endpoint: "https://example.com", APIKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMService(tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrNotConfigured)
		})
	}
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(testConfig("https://example.com"))
	require.NoError(t, err)
	assert.Equal(t, "cohere.command-a-03-2025", svc.ModelName())
}

func TestLLMService_Generate_CohereFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/20231130/actions/chat", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var captured capturedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		assert.Equal(t, "ocid1.compartment.oc1..test", captured.CompartmentID)
		assert.Equal(t, "ON_DEMAND", captured.ServingMode.ServingType)
		assert.Equal(t, "cohere.command-a-03-2025", captured.ServingMode.ModelID)

		var chatReq cohereChatRequest
		require.NoError(t, json.Unmarshal(captured.ChatRequest, &chatReq))
		assert.Equal(t, "COHERE", chatReq.APIFormat)
		assert.Equal(t, "有給休暇の取得条件を教えてください。", chatReq.Message)
		assert.Equal(t, 4000, chatReq.MaxTokens)
		assert.Equal(t, 0.3, chatReq.Temperature)
		assert.Equal(t, 0.75, chatReq.TopP)
		assert.Equal(t, 0.0, chatReq.FrequencyPenalty)
		assert.Equal(t, 0, chatReq.TopK)

		_, _ = w.Write([]byte(cohereResponse("入社6ヶ月経過後に付与されます。")))
	}))
	defer server.Close()

	svc, err := NewLLMService(testConfig(server.URL))
	require.NoError(t, err)

	answer, err := svc.Generate(context.Background(), "有給休暇の取得条件を教えてください。", driven.GenerateOptions{
		Temperature: 0.3,
		TopP:        0.75,
	})
	require.NoError(t, err)
	assert.Equal(t, "入社6ヶ月経過後に付与されます。", answer)
}

func TestLLMService_Generate_GenericFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var captured capturedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		assert.Equal(t, "meta.llama-3.3-70b-instruct", captured.ServingMode.ModelID)

		var chatReq genericChatRequest
		require.NoError(t, json.Unmarshal(captured.ChatRequest, &chatReq))
		assert.Equal(t, "GENERIC", chatReq.APIFormat)
		require.Len(t, chatReq.Messages, 1)
		assert.Equal(t, "USER", chatReq.Messages[0].Role)
		require.Len(t, chatReq.Messages[0].Content, 1)
		assert.Equal(t, "TEXT", chatReq.Messages[0].Content[0].Type)
		assert.Equal(t, "経費精算の締め日はいつですか。", chatReq.Messages[0].Content[0].Text)
		assert.Equal(t, 128000, chatReq.MaxTokens)

		_, _ = w.Write([]byte(genericResponse("毎月末日です。")))
	}))
	defer server.Close()

	svc, err := NewLLMService(testConfig(server.URL))
	require.NoError(t, err)

	answer, err := svc.Generate(context.Background(), "経費精算の締め日はいつですか。", driven.GenerateOptions{
		Model: "meta.llama-3.3-70b-instruct",
	})
	require.NoError(t, err)
	assert.Equal(t, "毎月末日です。", answer)
}

func TestLLMService_Generate_ClampsMaxTokens(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		requested int
		want      int
	}{
		{"cohere zero gets ceiling", "cohere.command-a-03-2025", 0, 4000},
		{"cohere above ceiling clamped", "cohere.command-a-03-2025", 999999, 4000},
		{"cohere below ceiling kept", "cohere.command-a-03-2025", 1000, 1000},
		{"generic zero gets ceiling", "xai.grok-4", 0, 128000},
		{"generic above ceiling clamped", "google.gemini-2.5-flash", 200000, 128000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMaxTokens int
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var captured capturedRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

				var chatReq struct {
					MaxTokens int `json:"maxTokens"`
				}
				require.NoError(t, json.Unmarshal(captured.ChatRequest, &chatReq))
				gotMaxTokens = chatReq.MaxTokens

				_, _ = w.Write([]byte(cohereResponse("了解しました。")))
			}))
			defer server.Close()

			svc, err := NewLLMService(testConfig(server.URL))
			require.NoError(t, err)

			_, err = svc.Generate(context.Background(), "テスト", driven.GenerateOptions{
				Model:     tt.model,
				MaxTokens: tt.requested,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, gotMaxTokens)
		})
	}
}

func TestLLMService_Generate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code": "TooManyRequests", "message": "request rate exceeded"}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(testConfig(server.URL))
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "テスト", driven.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestLLMService_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code": "NotAuthorizedOrNotFound", "message": "model not found in compartment"}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(testConfig(server.URL))
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "テスト", driven.GenerateOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found in compartment")
}

func TestLLMService_Generate_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chatResponse": {"apiFormat": "COHERE"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(testConfig(server.URL))
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "テスト", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty chat response")
}

func TestLLMService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(cohereResponse("pong")))
	}))
	defer server.Close()

	svc, err := NewLLMService(testConfig(server.URL))
	require.NoError(t, err)

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestLLMService_Ping_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, err := NewLLMService(testConfig(server.URL))
	require.NoError(t, err)

	err = svc.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
