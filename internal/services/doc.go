// Package services defines the shared error taxonomy for external
// collaborators and hosts the client packages that talk to them.
package services
