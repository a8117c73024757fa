// Package model defines the approval request data model shared by the store,
// the lifecycle manager and the notification layers.
package model
