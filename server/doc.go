// Package server exposes the approval engine over a REST API and a WebSocket
// stream so that dashboards and operators can list, approve, reject and
// cancel pending requests.
package server
