package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yly97/sslclient/pkg/sslclient"
)

func TestSetup(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := sslclient.DefaultConfig()
	client, network, socket, err := setup(&cfg, nil, logger)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, network)
	assert.Equal(t, "tcp", socket.Network())
}

func TestSetupErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	for name, mutate := range map[string]func(*sslclient.Config){
		"method":  func(c *sslclient.Config) { c.TLS.Method = "sslv3" },
		"network": func(c *sslclient.Config) { c.Network.MAC = "zz" },
		"socket":  func(c *sslclient.Config) { c.TLS.Method = "dtlsv1.2"; c.Server.Proxy = "127.0.0.1:1080" },
	} {
		cfg := sslclient.DefaultConfig()
		mutate(&cfg)
		_, _, _, err := setup(&cfg, nil, logger)
		assert.Error(t, err, name)
	}
}

func TestServeMetricsShutdown(t *testing.T) {
	hook := test.NewGlobal()
	logger, _ := test.NewNullLogger()
	cfg := sslclient.DefaultConfig()
	client, _, _, err := setup(&cfg, nil, logger)
	require.NoError(t, err)

	srv := serveMetrics(client, sslclient.MetricsConfig{Listen: "127.0.0.1:0", Path: "/metrics"})
	shutdownMetrics(srv)
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, log.ErrorLevel, e.Level, e.Message)
	}
}
