// Package infra groups the adapters behind the core interfaces: the MQTT and
// Redis run notifiers, Prometheus and InfluxDB metrics sinks, the zerolog
// logger and the Sentry monitor. Nothing under core imports these packages;
// they self-register through init and are pulled in by app/plugins.
package infra
