package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess_NilListBecomesEmpty(t *testing.T) {
	resp := Success(nil)

	assert.Equal(t, ResponseSuccess, resp.Kind)
	require.NotNil(t, resp.Messages)
	assert.Empty(t, resp.Messages)
}

func TestFailureAndNotImplemented(t *testing.T) {
	failure := Failure("SMS_ERROR", "Failed to read SMS: boom")
	assert.Equal(t, ResponseError, failure.Kind)
	assert.Equal(t, "SMS_ERROR", failure.Code)
	assert.Equal(t, "Failed to read SMS: boom", failure.Message)
	assert.Nil(t, failure.Messages)

	assert.Equal(t, ResponseNotImplemented, NotImplemented().Kind)
}

func TestEnvelope_JSON(t *testing.T) {
	tests := []struct {
		name     string
		response CommandResponse
		id       string
		want     string
	}{
		{
			name:     "empty success keeps result array",
			response: Success(nil),
			want:     `{"status":"success","result":[]}`,
		},
		{
			name: "success with messages",
			response: Success(MessageList{
				{Sender: "+15550001", Body: "hi", Date: "1700000000000"},
			}),
			id:   "call-1",
			want: `{"id":"call-1","status":"success","result":[{"sender":"+15550001","body":"hi","date":"1700000000000"}]}`,
		},
		{
			name:     "failure carries null details",
			response: Failure("SMS_ERROR", "Failed to read SMS: boom"),
			want:     `{"status":"error","error":{"code":"SMS_ERROR","message":"Failed to read SMS: boom","details":null}}`,
		},
		{
			name:     "not implemented",
			response: NotImplemented(),
			want:     `{"status":"not_implemented"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := tt.response.Envelope()
			env.ID = tt.id

			data, err := json.Marshal(env)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestEnvelope_Decode(t *testing.T) {
	var env ChannelEnvelope
	err := json.Unmarshal([]byte(`{"status":"success","result":[{"sender":"a","body":"","date":"0"}]}`), &env)
	require.NoError(t, err)

	assert.Equal(t, ResponseSuccess, env.Status)
	require.Len(t, env.Result, 1)
	assert.Equal(t, MessageRecord{Sender: "a", Body: "", Date: "0"}, env.Result[0])
}

func TestMethodCall_Decode(t *testing.T) {
	var call MethodCall
	err := json.Unmarshal([]byte(`{"id":"7","method":"getSmsMessages"}`), &call)
	require.NoError(t, err)

	assert.Equal(t, "7", call.ID)
	assert.Equal(t, "getSmsMessages", call.Method)
	assert.Empty(t, call.Arguments)
}
