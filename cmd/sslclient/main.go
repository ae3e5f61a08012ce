package main

import (
	"context"
	"crypto/x509"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/yly97/sslclient/pkg/device"
	"github.com/yly97/sslclient/pkg/netif"
	"github.com/yly97/sslclient/pkg/signals"
	"github.com/yly97/sslclient/pkg/sslclient"
	"github.com/yly97/sslclient/pkg/transport"
	"github.com/yly97/sslclient/pkg/util"
)

var (
	verbose    int
	configPath string
	caPath     string
)

func main() {
	flag.IntVar(&verbose, "verbose", -1, "Set log level(0:trace, 1:debug, 2:info), overrides the config file")
	flag.StringVar(&configPath, "config", "", "Path to yaml config file")
	flag.StringVar(&caPath, "ca", "", "Path to root certificates, overrides tls.rootCA")
	flag.Parse()

	cfg := sslclient.DefaultConfig()
	if configPath != "" {
		loaded, err := sslclient.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("load config error: %v", err)
		}
		cfg = *loaded
	}
	switch verbose {
	case 0:
		cfg.Log.Level = log.TraceLevel.String()
	case 1:
		cfg.Log.Level = log.DebugLevel.String()
	case 2:
		cfg.Log.Level = log.InfoLevel.String()
	}
	if caPath != "" {
		cfg.TLS.RootCA = caPath
	}

	// 加载根证书
	var roots *x509.CertPool
	if cfg.TLS.RootCA != "" {
		pool, err := util.LoadCertPool(cfg.TLS.RootCA)
		if err != nil {
			log.Fatalf("load root certificate error: %v", err)
		}
		roots = pool
	}

	ctx := signals.Context(signals.RegisterSignalHandlers())

	// LED周期处理
	ledCtx, stopLED := context.WithCancel(ctx)
	clk := clock.New()
	led := device.StartCyclic(ledCtx, clk, cfg.LED.Period, device.CyclicHandler(&device.HostDevice{Logger: log.StandardLogger()}, &device.LEDState{}))

	client, network, socket, err := setup(&cfg, roots, log.StandardLogger())
	if err != nil {
		log.Fatal(err)
	}

	// 之后不再有log.Fatal，保证指标服务能被关闭
	if cfg.Metrics.Listen != "" {
		srv := serveMetrics(client, cfg.Metrics)
		defer shutdownMetrics(srv)
	}

	ret := sslclient.NewTask(&cfg, network, socket, client, clk).Run(ctx)
	stopLED()
	<-led
	log.Debugf("task finished with %d", ret)
}

// setup 创建客户端、网络接口和套接字，它们的日志都写到logger
func setup(cfg *sslclient.Config, roots *x509.CertPool, logger *log.Logger) (*sslclient.Client, netif.Interface, *transport.Socket, error) {
	client, err := sslclient.NewClient(cfg, roots, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	network, err := sslclient.NewNetwork(cfg.Network, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	socket, err := sslclient.NewSocket(cfg.Server, client.Method(), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return client, network, socket, nil
}

// serveMetrics 注册指标并在后台启动HTTP服务
func serveMetrics(client *sslclient.Client, cfg sslclient.MetricsConfig) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	client.SetMetrics(sslclient.NewMetrics(reg))

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Infof("metrics listening on %s%s", cfg.Listen, cfg.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server error: %v", err)
		}
	}()
	return srv
}

func shutdownMetrics(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("metrics shutdown: %v", err)
	}
}
