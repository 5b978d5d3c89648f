package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_Short(t *testing.T) {
	assert.Equal(t, "Answer a question from the ingested documents", askCmd.Short)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_HasTopKFlag(t *testing.T) {
	flag := askCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag, "top-k flag should exist")
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestAskCmd_HasModelFlag(t *testing.T) {
	flag := askCmd.Flags().Lookup("model")
	require.NotNil(t, flag, "model flag should exist")
	assert.Equal(t, "m", flag.Shorthand)
}

func TestAskCmd_HasRerankAndContextFlags(t *testing.T) {
	require.NotNil(t, askCmd.Flags().Lookup("no-rerank"))
	require.NotNil(t, askCmd.Flags().Lookup("show-contexts"))
	require.NotNil(t, askCmd.Flags().Lookup("filtering"))
	require.NotNil(t, askCmd.Flags().Lookup("answer-prompt"))
}

func TestAskCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "就業時間を教えてください。"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "就業時間は9時から18時までです。")
	assert.Contains(t, buf.String(), "Model:")
	assert.Contains(t, buf.String(), "Total:")

	mock := answerService.(*mockAnswerService)
	assert.Equal(t, "就業時間を教えてください。", mock.lastQuestion)
}

func TestAskCmd_PassesFlags(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{
		"ask", "--model", "xai.grok-4", "--filtering", "hr", "--top-k", "8",
		"--no-rerank", "--answer-prompt", "簡潔に回答してください。", "質問",
	})
	defer func() {
		rootCmd.SetArgs(nil)
		askModel = ""
		askFiltering = ""
		askTopK = 0
		askNoRerank = false
		askAnswerPrompt = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	mock := answerService.(*mockAnswerService)
	assert.Equal(t, "xai.grok-4", mock.lastOpts.Model)
	assert.Equal(t, "hr", mock.lastOpts.Filtering)
	assert.Equal(t, 8, mock.lastOpts.TopK)
	assert.True(t, mock.lastOpts.DisableRerank)
	assert.Equal(t, "簡潔に回答してください。", mock.lastOpts.AnswerPrompt)
}

func TestAskCmd_ShowContexts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--show-contexts", "質問"})
	defer func() {
		rootCmd.SetArgs(nil)
		askShowContexts = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Retrieved contexts")
	assert.Contains(t, buf.String(), "就業規則.pdf")
	assert.Contains(t, buf.String(), "rerank 0.9100")
	assert.Contains(t, buf.String(), "従業員の就業時間は9時から18時までとします。")
}

func TestAskCmd_WarnsWhenTruncated(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	result := testRAGResult()
	result.Truncated = true
	answerService = &mockAnswerService{result: result}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "質問"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "cut off mid-sentence")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	answerService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "質問"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer service not configured")
}

func TestAskCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	answerService = &mockAnswerService{askErr: domain.ErrNotFound}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "質問"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
