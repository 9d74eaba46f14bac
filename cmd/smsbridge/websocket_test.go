package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smsbridge/internal/models"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func socketURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func dialChannel(t *testing.T, ctx context.Context, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, socketURL(ts, "/channels/sms_reader/ws"), &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func TestWebSocket_RoundTripInOrder(t *testing.T) {
	channel := new(MockChannel)
	channel.On("Handle", mock.Anything, "getSmsMessages").Return(models.Success(models.MessageList{
		{Sender: "+15550001", Body: "hi", Date: "1700000000000"},
	}))
	channel.On("Handle", mock.Anything, "deleteSms").Return(models.NotImplemented())

	server := newTestServer(testConfig(""), channel, fakeHealth{})
	ts := httptest.NewServer(server.router)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialChannel(t, ctx, ts, nil)

	require.NoError(t, wsjson.Write(ctx, conn, models.MethodCall{ID: "a", Method: "getSmsMessages"}))
	require.NoError(t, wsjson.Write(ctx, conn, models.MethodCall{ID: "b", Method: "deleteSms"}))

	var first, second models.ChannelEnvelope
	require.NoError(t, wsjson.Read(ctx, conn, &first))
	require.NoError(t, wsjson.Read(ctx, conn, &second))

	assert.Equal(t, "a", first.ID)
	assert.Equal(t, models.ResponseSuccess, first.Status)
	require.Len(t, first.Result, 1)
	assert.Equal(t, "+15550001", first.Result[0].Sender)

	assert.Equal(t, "b", second.ID)
	assert.Equal(t, models.ResponseNotImplemented, second.Status)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestWebSocket_GeneratesMissingID(t *testing.T) {
	channel := new(MockChannel)
	channel.On("Handle", mock.Anything, "getSmsMessages").Return(models.Success(nil))

	server := newTestServer(testConfig(""), channel, fakeHealth{})
	ts := httptest.NewServer(server.router)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialChannel(t, ctx, ts, nil)

	require.NoError(t, wsjson.Write(ctx, conn, models.MethodCall{Method: "getSmsMessages"}))

	var envelope models.ChannelEnvelope
	require.NoError(t, wsjson.Read(ctx, conn, &envelope))

	_, err := uuid.Parse(envelope.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ResponseSuccess, envelope.Status)
	assert.NotNil(t, envelope.Result)
}

func TestWebSocket_RequiresSignatureWhenSecretSet(t *testing.T) {
	channel := new(MockChannel)
	channel.On("Handle", mock.Anything, "getSmsMessages").Return(models.Success(nil)).Maybe()

	server := newTestServer(testConfig(testSecret), channel, fakeHealth{})
	ts := httptest.NewServer(server.router)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, socketURL(ts, "/channels/sms_reader/ws"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn := dialChannel(t, ctx, ts, signedHeader(testSecret, "", fixedNow))
	require.NoError(t, wsjson.Write(ctx, conn, models.MethodCall{ID: "x", Method: "getSmsMessages"}))

	var envelope models.ChannelEnvelope
	require.NoError(t, wsjson.Read(ctx, conn, &envelope))
	assert.Equal(t, "x", envelope.ID)
}

func TestWebSocket_UnknownChannel(t *testing.T) {
	server := newTestServer(testConfig(""), new(MockChannel), fakeHealth{})
	ts := httptest.NewServer(server.router)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, socketURL(ts, "/channels/battery/ws"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocket_Disabled(t *testing.T) {
	cfg := testConfig("")
	cfg.Channel.WebSocketEnabled = false
	server := newTestServer(cfg, new(MockChannel), fakeHealth{})

	req := httptest.NewRequest(http.MethodGet, "/channels/sms_reader/ws", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebSocket_WrongMethod(t *testing.T) {
	server := newTestServer(testConfig(""), new(MockChannel), fakeHealth{})

	req := httptest.NewRequest(http.MethodPost, "/channels/sms_reader/ws", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestWebSocket_MalformedFrameClosesConnection(t *testing.T) {
	channel := new(MockChannel)
	server := newTestServer(testConfig(""), channel, fakeHealth{})
	ts := httptest.NewServer(server.router)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialChannel(t, ctx, ts, nil)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"method":`)))

	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusInvalidFramePayloadData, websocket.CloseStatus(err))
	channel.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestWebSocket_ShutdownClosesSessions(t *testing.T) {
	server := newTestServer(testConfig(""), new(MockChannel), fakeHealth{})
	ts := httptest.NewServer(server.router)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialChannel(t, ctx, ts, nil)

	require.NoError(t, server.Shutdown(ctx))

	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}
