package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This file defines the Prometheus metrics that are exposed by the application.

// httpRequestsTotal is a Prometheus counter vector that tracks the total number of HTTP requests.
// It is partitioned by the request's URL path, HTTP method, and the resulting status code.
var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cityweather_http_requests_total",
	Help: "Total number of HTTP requests by path, method and code.",
}, []string{"path", "method", "code"})

// weatherFetchesTotal counts calls to the upstream weather source, partitioned
// by outcome, so refresh failures show up on dashboards without log digging.
var weatherFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cityweather_weather_fetches_total",
	Help: "Total number of upstream weather fetches by outcome.",
}, []string{"outcome"})
