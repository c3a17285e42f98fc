// Package providers holds the framework's service providers. The
// application registers them in order: config, logging, metrics (deferred),
// callback resolver, routing.
package providers
