package authenticator

import (
	"testing"
	"time"

	"github.com/spinvault/backend/config"
	"github.com/stretchr/testify/require"
)

type testObject struct {
	ID string `json:"id"`
}

func TestTokenEngineRoundTrip(t *testing.T) {
	engine := NewTokenEngine[testObject]("secret", config.TokenConfigs{Expiration: time.Minute})

	token, err := engine.Generate("player1", testObject{ID: "player1"})
	require.NoError(t, err)

	obj, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "player1", obj.ID)
}

func TestTokenEngineRejectsForgedSecret(t *testing.T) {
	engine := NewTokenEngine[testObject]("secret", config.TokenConfigs{Expiration: time.Minute})
	other := NewTokenEngine[testObject]("other-secret", config.TokenConfigs{Expiration: time.Minute})

	token, err := other.Generate("player1", testObject{ID: "player1"})
	require.NoError(t, err)

	_, err = engine.Verify(token)
	require.Error(t, err)
}
