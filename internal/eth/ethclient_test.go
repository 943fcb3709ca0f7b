package eth

import (
	"testing"

	"github.com/realmwatch/salesbot/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestCreateEthClient_Success(t *testing.T) {
	originalConfig := config.Get
	defer func() { config.Get = originalConfig }()

	config.Get = func() config.Config {
		return config.Config{
			RoninRpcUrl: "http://localhost:8545",
		}
	}

	client, err := createEthClient()
	assert.NoError(t, err)
	assert.NotNil(t, client)
	client.Close()
}

func TestCreateEthClient_EmptyURL(t *testing.T) {
	originalConfig := config.Get
	defer func() { config.Get = originalConfig }()

	config.Get = func() config.Config {
		return config.Config{
			RoninRpcUrl: "",
		}
	}

	client, err := createEthClient()
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "RoninRpcUrl is not set")
}

func TestCreateEthClient_InvalidURL(t *testing.T) {
	originalConfig := config.Get
	defer func() { config.Get = originalConfig }()

	config.Get = func() config.Config {
		return config.Config{
			RoninRpcUrl: "invalid://url",
		}
	}

	client, err := createEthClient()
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to configure RPC client")
}
