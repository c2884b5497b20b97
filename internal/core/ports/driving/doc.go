// Package driving provides interfaces for inbound adapters (primary ports).
package driving
