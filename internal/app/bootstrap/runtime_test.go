package bootstrap

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/whatsapp-booking-assistant/internal/config"
	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

func TestBuildRedisClient(t *testing.T) {
	logger := logging.New("error")
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, logger, true))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true)
	require.NotNil(t, client)
	defer client.Close()

	store := BuildProcessedStore(client, &appconfig.Config{ProcessedTTL: time.Hour})
	require.NotNil(t, store)
	ok, err := store.MarkProcessed(context.Background(), "twilio", "SM1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, mr.TTL("processed:twilio:SM1"))
}

func TestBuildRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logging.New("error"), true))
}

func TestBuildProcessedStoreWithoutRedis(t *testing.T) {
	assert.Nil(t, BuildProcessedStore(nil, &appconfig.Config{}))
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	assert.Nil(t, ConnectPostgresPool(context.Background(), "", logging.New("error")))
	assert.Nil(t, ConnectPostgresPool(context.Background(), "::not a url::", logging.New("error")))
}

func TestBuildReplyMessenger(t *testing.T) {
	messenger, reason := BuildReplyMessenger(&appconfig.Config{}, nil)
	assert.Nil(t, messenger)
	assert.Contains(t, reason, "TWILIO_ACCOUNT_SID missing")

	messenger, reason = BuildReplyMessenger(&appconfig.Config{
		TwilioAccountSID: "AC1",
		TwilioAuthToken:  "token",
		WhatsAppNumber:   "+14155238886",
	}, nil)
	assert.NotNil(t, messenger)
	assert.Empty(t, reason)
}
