package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueryResponse_DecodesAdvisorUnion(t *testing.T) {
	cases := []struct {
		name string
		body string
		want AdvisorReply
	}{
		{name: "plain string", body: `{"advisor_response":"Save 20%."}`, want: TextReply("Save 20%.")},
		{name: "empty string", body: `{"advisor_response":""}`, want: TextReply("")},
		{name: "error object", body: `{"advisor_response":{"error":"llm down"}}`, want: ErrorReply("llm down")},
		{name: "error object with empty message", body: `{"advisor_response":{"error":""}}`, want: AdvisorReply{Kind: ReplyMissing}},
		{name: "object without error", body: `{"advisor_response":{"raw":"x"}}`, want: AdvisorReply{Kind: ReplyMissing}},
		{name: "null", body: `{"advisor_response":null}`, want: AdvisorReply{Kind: ReplyMissing}},
		{name: "absent", body: `{"response":"Goodbye!"}`, want: AdvisorReply{Kind: ReplyMissing}},
		{name: "number", body: `{"advisor_response":42}`, want: AdvisorReply{Kind: ReplyMissing}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var resp QueryResponse
			require.NoError(t, json.Unmarshal([]byte(tc.body), &resp))
			require.Equal(t, tc.want, resp.Advisor)
		})
	}
}

func TestQueryResponse_KeepsLinksAndManager(t *testing.T) {
	var resp QueryResponse
	body := `{"advisor_response":"ok","web_links":"- [A](http://x.com)","manager_response":{"plan":["a"]}}`
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Equal(t, "- [A](http://x.com)", resp.WebLinks)
	require.JSONEq(t, `{"plan":["a"]}`, string(resp.Manager))
}

func TestUploadResult_OptionalChunks(t *testing.T) {
	var withChunks UploadResult
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"message":"done","chunks_created":12}`), &withChunks))
	require.NotNil(t, withChunks.ChunksCreated)
	require.Equal(t, 12, *withChunks.ChunksCreated)

	var without UploadResult
	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"message":"No file provided"}`), &without))
	require.Nil(t, without.ChunksCreated)
	require.False(t, without.Success)
}

func TestReplyKind_String(t *testing.T) {
	require.Equal(t, "text", ReplyText.String())
	require.Equal(t, "error", ReplyError.String())
	require.Equal(t, "missing", ReplyMissing.String())
}

func TestLink_Host(t *testing.T) {
	require.Equal(t, "www.investopedia.com", Link{URL: "https://www.investopedia.com/budgeting"}.Host())
	require.Equal(t, "localhost", Link{URL: "http://localhost:5000/x"}.Host())
	require.Equal(t, "not a url", Link{URL: "not a url"}.Host())
}
