// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tuliogomesp/Floripasat-Project/cc112x"
)

// statsSource is satisfied by *cc112x.Radio, Stats is safe to call from any goroutine.
type statsSource interface {
	Stats() cc112x.Stats
}

// newRegistry exports the radio counters.
func newRegistry(src statsSource, boot string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"boot": boot}
	counter := func(name, help string, get func(s cc112x.Stats) uint64) {
		reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   "floripasat",
			Subsystem:   "radio",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 { return float64(get(src.Stats())) }))
	}
	counter("tx_packets_total", "Packets transmitted.", func(s cc112x.Stats) uint64 { return s.Sent })
	counter("rx_packets_total", "Packets received.", func(s cc112x.Stats) uint64 { return s.Received })
	counter("tx_timeouts_total", "Transmissions without end-of-packet interrupt.",
		func(s cc112x.Stats) uint64 { return s.TxTimeouts })
	counter("rx_fifo_errors_total", "RX FIFO errors flushed.",
		func(s cc112x.Stats) uint64 { return s.FifoErrors })
	counter("rx_framing_errors_total", "Received packets with a bad length byte.",
		func(s cc112x.Stats) uint64 { return s.FramingErrors })
	counter("calibrations_total", "Synthesizer calibrations.",
		func(s cc112x.Stats) uint64 { return s.Calibrations })
	counter("interrupts_total", "Packet interrupts latched.",
		func(s cc112x.Stats) uint64 { return s.Interrupts })
	return reg
}

// serveMetrics runs the exporter until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log *logrus.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}()
	log.Infof("metrics on http://%s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("metrics server: %s", err)
	}
}
