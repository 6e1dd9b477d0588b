package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/advisor"
	"fintrack/internal/middleware"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newChatServer wires only the chat route against a stub completion backend.
func newChatServer(t *testing.T, backend http.HandlerFunc) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	adv := advisor.NewWithConfig(cfg, "gpt-4o-mini")

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.SessionMiddleware(testSecret))
	api.POST("/chat", ChatHandler(db, adv))

	_, token := signupTestUser(t, db, "tester@example.com")
	return r, token
}

func postChat(r *gin.Engine, token, question string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"question": question})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestChatRelaysAdvice(t *testing.T) {
	r, token := newChatServer(t, func(w http.ResponseWriter, req *http.Request) {
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "Trim dining out."}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	rr := postChat(r, token, "Where can I cut spending?")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Advice string `json:"advice"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Trim dining out.", resp.Advice)
}

func TestChatDegradesOnProviderFailure(t *testing.T) {
	r, token := newChatServer(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	})

	rr := postChat(r, token, "Anything?")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Advice string `json:"advice"`
		Error  string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Advice)
	assert.Contains(t, resp.Error, "unavailable")
}

func TestChatRejectsEmptyQuestion(t *testing.T) {
	r, token := newChatServer(t, func(w http.ResponseWriter, req *http.Request) {
		t.Error("backend must not be called")
	})

	rr := postChat(r, token, "   ")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "question")
}

func TestChatRequiresSession(t *testing.T) {
	r, _ := newChatServer(t, func(w http.ResponseWriter, req *http.Request) {
		t.Error("backend must not be called")
	})

	body, _ := json.Marshal(map[string]string{"question": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
